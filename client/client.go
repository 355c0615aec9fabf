// Package client implements the Go SDK for the wAppLoxx controller CGI API.
// It owns the HTTP session (login/logout, automatic re-login on session
// expiry) and exposes typed accessors for panel, lock, and event-log
// operations.
//
// The client is synchronous and not safe for concurrent use: the controller
// enforces a single session per account, and the SDK mirrors that model.
package client

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"pkt.systems/pslog"
	"pkt.systems/wapploxx/api"
	"pkt.systems/wapploxx/internal/ipblock"
)

const (
	// DefaultHTTPTimeout bounds each request issued by the SDK.
	DefaultHTTPTimeout = 5 * time.Second

	// sourceTag is sent with every request; the firmware uses it to
	// distinguish its own web UI from other callers.
	sourceTag = "Webpage"
)

// Client talks to one wAppLoxx controller. Construct with New.
type Client struct {
	baseURL      string
	username     string
	password     string
	httpClient   *http.Client
	httpTimeout  time.Duration
	insecureTLS  bool
	persistBlock bool
	blockStore   *ipblock.Store
	logger       pslog.Base

	loggedIn  bool
	lastLogin time.Time
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient supplies a custom HTTP client/transport stack. The supplied
// client should carry a cookie jar: the controller tracks the session via
// cookies.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.httpClient = cli
		}
	}
}

// WithLogger supplies a logger for client diagnostics.
// Passing nil falls back to pslog.NoopLogger().
func WithLogger(logger pslog.Base) Option {
	return func(c *Client) {
		if logger == nil {
			c.logger = pslog.NoopLogger()
			return
		}
		c.logger = logger
	}
}

// WithHTTPTimeout overrides the per-request timeout applied by the SDK.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpTimeout = d
		}
	}
}

// WithInsecureTLS disables TLS certificate verification. Controllers ship
// with self-signed certificates, so most deployments need this unless the
// certificate has been replaced.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.insecureTLS = true
	}
}

// WithIPBlockPath overrides where the login-lockout record is persisted.
// The default is ipblock.DefaultFileName in the working directory.
func WithIPBlockPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.blockStore = ipblock.New(path)
		}
	}
}

// WithoutIPBlockPersistence stops the client from writing lockout records on
// LOGIN_IP_BLOCKED responses. Existing records are still consulted before
// login attempts.
func WithoutIPBlockPersistence() Option {
	return func(c *Client) {
		c.persistBlock = false
	}
}

// New creates a client for the controller at baseURL (e.g.
// https://192.168.1.50) authenticating as username/password. No request is
// made until the first operation; login happens implicitly on demand.
func New(baseURL, username, password string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("wapploxx: controller URL required")
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("wapploxx: username and password required")
	}
	c := &Client{
		baseURL:      trimmed,
		username:     username,
		password:     password,
		httpTimeout:  DefaultHTTPTimeout,
		persistBlock: true,
		blockStore:   ipblock.New(""),
		logger:       pslog.NoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("wapploxx: cookie jar: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.insecureTLS {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		c.httpClient = &http.Client{Jar: jar, Transport: transport}
	}
	return c, nil
}

// LoggedIn reports whether the client holds a session it believes to be
// valid. The flag is local: the controller may have expired the session
// server-side, in which case the next operation re-authenticates.
func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

// LastLogin returns the instant of the last successful login, zero when the
// client has never logged in.
func (c *Client) LastLogin() time.Time {
	return c.lastLogin
}

// IPBlockRemaining returns the time left on a persisted login lockout, zero
// when none is recorded.
func (c *Client) IPBlockRemaining() time.Duration {
	return c.blockStore.Remaining()
}

// LoginOption customises Login behaviour.
type LoginOption func(*loginConfig)

type loginConfig struct {
	ignoreIPBlock bool
}

// IgnoringIPBlock skips the persisted-lockout check before the login
// attempt. Use it when the calling address has changed since the lockout was
// recorded; otherwise the attempt will just extend the block.
func IgnoringIPBlock() LoginOption {
	return func(cfg *loginConfig) {
		cfg.ignoreIPBlock = true
	}
}

// Login authenticates against the controller. A persisted lockout with time
// remaining fails fast with *IPBlockedError before any request is issued,
// unless IgnoringIPBlock is given. A successful login clears any lockout
// record; a LOGIN_IP_BLOCKED response persists the controller-supplied
// lockout duration before surfacing *AuthError.
func (c *Client) Login(ctx context.Context, opts ...LoginOption) (api.LoginResult, error) {
	var cfg loginConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.ignoreIPBlock {
		if remaining := c.blockStore.Remaining(); remaining > 0 {
			c.logDebug("client.login.blocked", "remaining", remaining)
			return api.LoginResult{}, &IPBlockedError{Remaining: remaining}
		}
	}
	params := url.Values{}
	params.Set("Username", encodeCredential(c.username))
	params.Set("Password", encodeCredential(c.password))
	status, body, err := c.do(ctx, api.EndpointLogin, params, true)
	if err != nil {
		return api.LoginResult{}, err
	}
	if status < 200 || status > 299 {
		return api.LoginResult{}, &APIError{Endpoint: api.EndpointLogin, Status: status, Body: body}
	}
	var res api.LoginResult
	if err := json.Unmarshal(body, &res); err != nil {
		return api.LoginResult{}, fmt.Errorf("wapploxx: decode login response: %w", err)
	}
	res.Raw = body
	if res.OK() {
		c.loggedIn = true
		c.lastLogin = time.Now()
		if err := c.blockStore.Clear(); err != nil {
			c.logWarn("client.login.clear_block", "error", err)
		}
		c.logInfo("client.login.success", "user", c.username)
		return res, nil
	}
	if res.ErrMsg == api.ErrIPBlocked && c.persistBlock {
		block := time.Duration(res.BlockSeconds()) * time.Second
		if err := c.blockStore.Save(block); err != nil {
			c.logWarn("client.login.save_block", "error", err)
		} else {
			c.logWarn("client.login.ip_blocked", "block", block)
		}
	}
	return api.LoginResult{}, newAuthError(res)
}

// Logout ends the controller session. The local logged-in flag is left
// untouched regardless of outcome, matching the firmware's observed
// behaviour of tolerating logout in any state.
func (c *Client) Logout(ctx context.Context) error {
	status, body, err := c.do(ctx, api.EndpointLogout, nil, true)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &APIError{Endpoint: api.EndpointLogout, Status: status, Body: body}
	}
	c.logInfo("client.logout", "user", c.username)
	return nil
}

// Close logs out of the controller. It exists so callers can defer session
// teardown the way they defer other closers.
func (c *Client) Close(ctx context.Context) error {
	return c.Logout(ctx)
}

// PanelStatus fetches the live alarm-panel status, including the per-lock
// remote-access times.
func (c *Client) PanelStatus(ctx context.Context) (api.PanelStatus, error) {
	var res api.PanelStatus
	raw, err := c.getJSON(ctx, api.EndpointGetPanelStatus, nil, &res)
	if err != nil {
		return api.PanelStatus{}, err
	}
	res.Raw = raw
	return res, nil
}

// SetPanel arms or disarms the panel. Arming a panel that is not ready for
// set is acknowledged with Status FAIL and an ErrMsg, not an HTTP error.
func (c *Client) SetPanel(ctx context.Context, action api.PanelAction) (api.StatusResult, error) {
	params := url.Values{}
	params.Set("Action", string(action))
	var res api.StatusResult
	raw, err := c.getJSON(ctx, api.EndpointSetPanel, params, &res)
	if err != nil {
		return api.StatusResult{}, err
	}
	res.Raw = raw
	return res, nil
}

// SetRemoteAccess starts or stops remote access (unlock/relock) for lockID.
func (c *Client) SetRemoteAccess(ctx context.Context, lockID int, action api.RemoteAccessAction) (api.StatusResult, error) {
	params := url.Values{}
	params.Set("LoxxId", strconv.Itoa(lockID))
	params.Set("Action", string(action))
	var res api.StatusResult
	raw, err := c.getJSON(ctx, api.EndpointSetRemoteAccess, params, &res)
	if err != nil {
		return api.StatusResult{}, err
	}
	res.Raw = raw
	return res, nil
}

// SystemStatus fetches controller system status. pauseAutoLogout asks the
// firmware to keep the session alive while the caller polls.
func (c *Client) SystemStatus(ctx context.Context, pauseAutoLogout bool) (api.SystemStatus, error) {
	params := url.Values{}
	params.Set("LoxxState", "OFF")
	if pauseAutoLogout {
		params.Set("PauseAutoLogout", "ON")
	} else {
		params.Set("PauseAutoLogout", "OFF")
	}
	var res api.SystemStatus
	raw, err := c.getJSON(ctx, api.EndpointGetSystemStatus, params, &res)
	if err != nil {
		return api.SystemStatus{}, err
	}
	res.Raw = raw
	return res, nil
}

// EventLog fetches a page of the controller event log starting at index.
// A count <= 0 defaults to 50 entries; an empty eventType defaults to All.
func (c *Client) EventLog(ctx context.Context, index, count int, eventType api.EventType) (api.EventLog, error) {
	if count <= 0 {
		count = 50
	}
	if eventType == "" {
		eventType = api.EventAll
	}
	params := url.Values{}
	params.Set("Index", strconv.Itoa(index))
	params.Set("Count", strconv.Itoa(count))
	params.Set("Type", string(eventType))
	var res api.EventLog
	raw, err := c.getJSON(ctx, api.EndpointGetEventLog, params, &res)
	if err != nil {
		return api.EventLog{}, err
	}
	res.Raw = raw
	return res, nil
}

// UserInfo fetches the logged-in user's info object. The endpoint returns an
// HTML page; the payload is extracted from the embedded g_UserInfo script
// variable.
func (c *Client) UserInfo(ctx context.Context) (api.UserInfo, error) {
	body, err := c.get(ctx, api.EndpointUserHome, nil, true)
	if err != nil {
		return api.UserInfo{}, err
	}
	raw, err := extractScriptJSONRaw(body, userInfoPattern, "g_UserInfo")
	if err != nil {
		return api.UserInfo{}, err
	}
	return api.UserInfo{Raw: raw}, nil
}

// SmartloxxList fetches the lock listing. The endpoint returns an HTML page;
// the payload is extracted from the embedded gSmartloxxList script variable.
func (c *Client) SmartloxxList(ctx context.Context) (api.SmartloxxList, error) {
	body, err := c.get(ctx, api.EndpointUserSmartloxx, nil, true)
	if err != nil {
		return api.SmartloxxList{}, err
	}
	var list api.SmartloxxList
	if err := extractScriptJSON(body, smartloxxListPattern, "gSmartloxxList", &list); err != nil {
		return api.SmartloxxList{}, err
	}
	return list, nil
}

// getJSON dispatches an authenticated GET and decodes the JSON body into
// out, returning the raw body for the caller's Raw field.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) (json.RawMessage, error) {
	body, err := c.get(ctx, endpoint, params, true)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("wapploxx: decode %s response: %w", endpoint, err)
	}
	return json.RawMessage(body), nil
}

// get is the authenticated dispatch path: it logs in on demand, issues the
// request, and on a 401 re-authenticates exactly once and retries once. A
// second consecutive 401 propagates as the retried call's own *APIError.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, withDefaults bool) ([]byte, error) {
	if !c.loggedIn && !api.IsAuthEndpoint(endpoint) {
		if _, err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
	status, body, err := c.do(ctx, endpoint, params, withDefaults)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.logDebug("client.http.relogin", "endpoint", endpoint)
		if _, err := c.Login(ctx); err != nil {
			return nil, err
		}
		status, body, err = c.do(ctx, endpoint, params, withDefaults)
		if err != nil {
			return nil, err
		}
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Endpoint: endpoint, Status: status, Body: body}
	}
	return body, nil
}

// do issues one HTTP GET against endpoint and buffers the response body.
// When withDefaults is set, caller params win over the default ts/Source
// pair on key collision.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values, withDefaults bool) (int, []byte, error) {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	merged := url.Values{}
	if withDefaults {
		merged.Set("ts", strconv.FormatInt(time.Now().UnixMilli(), 10))
		merged.Set("Source", sourceTag)
	}
	for k, vs := range params {
		merged[k] = vs
	}
	reqURL := c.baseURL + "/" + endpoint + "?" + merged.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("wapploxx: build request for %s: %w", endpoint, err)
	}
	cid := xid.New().String()
	start := time.Now()
	c.logTrace("client.http.get", "endpoint", endpoint, "cid", cid)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logDebug("client.http.error", "endpoint", endpoint, "cid", cid, "error", err, "duration", time.Since(start))
		return 0, nil, fmt.Errorf("wapploxx: call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("wapploxx: read %s response: %w", endpoint, err)
	}
	c.logTrace("client.http.done", "endpoint", endpoint, "cid", cid, "status", resp.StatusCode, "duration", time.Since(start))
	return resp.StatusCode, body, nil
}

func (c *Client) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.httpTimeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, c.httpTimeout)
}

// encodeCredential applies the vendor transport encoding for credentials:
// plain base64 over UTF-8 bytes, an obfuscation rather than a security
// measure.
func encodeCredential(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func (c *Client) logTrace(msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Trace(msg, keyvals...)
}

func (c *Client) logDebug(msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, keyvals...)
}

func (c *Client) logInfo(msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, keyvals...)
}

func (c *Client) logWarn(msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, keyvals...)
}
