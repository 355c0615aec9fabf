package client

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// user_home.cgi and user_smartloxx.cgi do not return JSON bodies. Each ships
// an HTML page with a script block assigning a JSON literal to a global
// variable; the literal is the actual payload. Extraction anchors on the
// variable name and captures up to a fixed terminator. This is a documented
// brittle boundary inherited from the firmware: the terminator sequence must
// never occur inside the JSON payload itself (no raw newline after a closing
// brace inside a string value). Keep the patterns in sync with the firmware,
// not "fixed".
var (
	userInfoPattern      = regexp.MustCompile(`var\sg_UserInfo\=((.|\n)*?})\n`)
	smartloxxListPattern = regexp.MustCompile(`var\sgSmartloxxList\=((.|\n)*?});\n`)
)

// extractScriptJSON pulls the JSON literal assigned to variable out of an
// HTML document and decodes it into out.
func extractScriptJSON(html []byte, pattern *regexp.Regexp, variable string, out any) error {
	m := pattern.FindSubmatch(html)
	if m == nil {
		return &ScrapeError{Variable: variable, Err: fmt.Errorf("script variable assignment not found")}
	}
	if err := json.Unmarshal(m[1], out); err != nil {
		return &ScrapeError{Variable: variable, Err: err}
	}
	return nil
}

// extractScriptJSONRaw is extractScriptJSON without decoding; it validates
// the capture is well-formed JSON and returns it verbatim.
func extractScriptJSONRaw(html []byte, pattern *regexp.Regexp, variable string) (json.RawMessage, error) {
	m := pattern.FindSubmatch(html)
	if m == nil {
		return nil, &ScrapeError{Variable: variable, Err: fmt.Errorf("script variable assignment not found")}
	}
	if !json.Valid(m[1]) {
		return nil, &ScrapeError{Variable: variable, Err: fmt.Errorf("captured literal is not valid JSON")}
	}
	return json.RawMessage(m[1]), nil
}
