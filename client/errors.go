package client

import (
	"fmt"
	"time"

	"pkt.systems/wapploxx/api"
)

// authErrorDescriptions maps vendor ErrMsg codes from login.cgi to
// human-readable messages. Codes outside the table fall back to an unknown
// error embedding the raw response.
var authErrorDescriptions = map[string]string{
	"UNAVAILABLE":           "This account is currently not available",
	"TOO_MANY_USERS":        "Too many users are connected",
	"ACCOUNT_LOGGED":        "This account is already logged in",
	"UNAVAILABLE_BY_ADMIN":  "Administrator has been logged in",
	"LOGIN_ACCOUNT_BLOCKED": "Account blocked",
	"LOGIN_IP_BLOCKED":      "Wrong entry. Login blocked.",
	"UNAUTH":                "Please check your entry",
	"FAIL_TIMEOUT":          "Server error",
}

// APIError describes an unexpected HTTP response from the controller.
type APIError struct {
	// Endpoint is the CGI endpoint that failed.
	Endpoint string
	// Status is the HTTP status code returned by the controller.
	Status int
	// Body contains the raw response body bytes for diagnostics.
	Body []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wapploxx: endpoint %s returned status %d", e.Endpoint, e.Status)
}

// AuthError reports a login rejected by the controller for a recognised (or
// unknown) reason.
type AuthError struct {
	// Code is the vendor ErrMsg value from the login response.
	Code string
	// Message is the human-readable description for Code.
	Message string
	// Response is the decoded login response for diagnostics.
	Response api.LoginResult
}

func (e *AuthError) Error() string {
	return "wapploxx: " + e.Message
}

// newAuthError builds an AuthError from a failed login response, resolving
// the message through the vendor code table.
func newAuthError(res api.LoginResult) *AuthError {
	msg, ok := authErrorDescriptions[res.ErrMsg]
	if !ok {
		msg = fmt.Sprintf("unknown authentication error, response: %s", string(res.Raw))
	}
	return &AuthError{Code: res.ErrMsg, Message: msg, Response: res}
}

// IPBlockedError is returned by Login when a persisted lockout is still
// active. No HTTP request has been made. Wait out Remaining, or use
// IgnoringIPBlock when the calling address is known to have changed.
type IPBlockedError struct {
	// Remaining is the time left on the lockout, rounded up to seconds.
	Remaining time.Duration
}

func (e *IPBlockedError) Error() string {
	return fmt.Sprintf("wapploxx: this IP is blocked for another %s; wait for the block to expire or login with IgnoringIPBlock if the IP has changed", e.Remaining)
}

// LockNotFoundError is returned by lock lookups when the requested id is not
// present in the controller's lock listing.
type LockNotFoundError struct {
	// ID is the lock id that was requested.
	ID int
}

func (e *LockNotFoundError) Error() string {
	return fmt.Sprintf("wapploxx: no lock with id %d", e.ID)
}

// ScrapeError reports a failure to extract the embedded JSON literal from an
// HTML endpoint response.
type ScrapeError struct {
	// Variable is the script variable the extraction anchored on.
	Variable string
	// Err is the underlying cause (pattern miss or JSON decode failure).
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("wapploxx: extracting %s from HTML response: %v", e.Variable, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}
