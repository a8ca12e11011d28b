// Package tokenmanager owns the OAuth2 token lifecycle: lazy acquisition
// with the client-credentials grant, refresh ahead of expiry with fallback
// to re-acquisition, and explicit invalidation. Safe for concurrent use.
package tokenmanager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"github.com/valyala/fastjson"

	"github.com/imagine-anything/imagineanything-go/token"
)

// RefreshBuffer is how long before the deadline a token is considered in
// need of refresh. Fixed: it covers the window where a token passes the
// check but expires before the dependent API call lands.
const RefreshBuffer = 5 * time.Minute

// DefaultTimeout bounds each token-endpoint call.
const DefaultTimeout = 30 * time.Second

// HTTPDoer is interface for http client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options define manager options.
type Options struct {
	// TokenURL is the full token endpoint URL, e.g.
	// https://imagineanything.com/api/auth/token.
	TokenURL     string
	ClientID     string
	ClientSecret string

	// DisableAutoRefresh keeps returning the cached token even past its
	// deadline; the API's eventual 401 is then the caller's to handle.
	DisableAutoRefresh bool

	// HTTPClient is the HTTP client to use to make requests.
	// If nil, http.DefaultClient is used.
	HTTPClient HTTPDoer

	// Timeout bounds each token-endpoint call. 0 defaults to 30 seconds.
	Timeout time.Duration

	// Cache stores the token state. If nil, a fresh in-memory cache is
	// created for this manager. Managers never share a default cache.
	Cache token.TokenCache

	// Time source used to check token expiration.
	// If unspecified, defaults to time.Now().
	TimeSource func() time.Time

	// Logging function, if undefined defaults to log.Printf
	Logf func(format string, v ...any)

	// Enable debug logging.
	Debug bool
}

// AuthError reports a failed token acquisition: a non-2xx response from the
// token endpoint. Code and Description come from the response body's
// error/error_description (or message) fields when the body is JSON,
// otherwise Code is "invalid_response" and Description the raw body.
type AuthError struct {
	Code        string
	Description string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s: %s", e.Code, e.Description)
}

// Manager produces currently-valid bearer tokens on demand.
type Manager struct {
	options Options

	// mutex serializes the whole get-or-refresh-or-acquire sequence,
	// including the token HTTP call. It is never re-entered and never held
	// across the caller's own API request.
	mutex sync.Mutex
}

// New creates a manager.
func New(options Options) *Manager {
	if options.HTTPClient == nil {
		options.HTTPClient = http.DefaultClient
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultTimeout
	}
	if options.Cache == nil {
		options.Cache = token.NewMemoryCache()
	}
	if options.TimeSource == nil {
		options.TimeSource = time.Now
	}
	if options.Logf == nil {
		options.Logf = log.Printf
	}
	return &Manager{
		options: options,
	}
}

func (m *Manager) errorf(format string, v ...any) {
	m.options.Logf("ERROR: "+format, v...)
}

func (m *Manager) debugf(format string, v ...any) {
	if m.options.Debug {
		m.options.Logf("DEBUG: "+format, v...)
	}
}

// GetAccessToken returns a usable bearer token, acquiring or refreshing as
// needed. Concurrent callers block until the in-flight sequence completes
// and all observe the same resulting token.
func (m *Manager) GetAccessToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t, errCache := m.options.Cache.Get()
	if errCache != nil {
		m.errorf("cache get error: %v", errCache)
		t = token.Token{}
	}

	switch {
	case t.IsZero():
		m.debugf("no token yet, acquiring")
		acquired, errAcquire := m.acquire(ctx)
		if errAcquire != nil {
			return "", errAcquire
		}
		t = acquired
	case !m.options.DisableAutoRefresh && t.NeedsRefresh(m.options.TimeSource(), RefreshBuffer):
		m.debugf("token in refresh window, refreshing")
		refreshed, errRefresh := m.refresh(ctx, t)
		if errRefresh != nil {
			return "", errRefresh
		}
		t = refreshed
	}

	return t.AccessToken, nil
}

// Invalidate clears the cached token state; the next GetAccessToken
// acquires from scratch.
func (m *Manager) Invalidate() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.options.Cache.Clear()
}

// acquire performs a client-credentials grant and stores the new token.
func (m *Manager) acquire(ctx context.Context) (token.Token, error) {
	body := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     m.options.ClientID,
		"client_secret": m.options.ClientSecret,
	}

	status, respBody, errSend := m.sendTokenRequest(ctx, body)
	if errSend != nil {
		return token.Token{}, errSend
	}
	if status < 200 || status > 299 {
		return token.Token{}, authErrorFromBody(respBody)
	}

	return m.storeTokenResponse(respBody)
}

// refresh performs a refresh-token grant. Any refresh failure falls back to
// a single client-credentials acquisition; only that fallback's failure
// surfaces to the caller.
func (m *Manager) refresh(ctx context.Context, t token.Token) (token.Token, error) {
	if t.RefreshToken == "" {
		m.debugf("no refresh token, acquiring")
		return m.acquire(ctx)
	}

	body := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": t.RefreshToken,
	}

	status, respBody, errSend := m.sendTokenRequest(ctx, body)
	if errSend != nil {
		m.errorf("refresh transport error, falling back to acquisition: %v", errSend)
		return m.acquire(ctx)
	}
	if status < 200 || status > 299 {
		m.debugf("refresh refused with status %d, falling back to acquisition", status)
		return m.acquire(ctx)
	}

	refreshed, errStore := m.storeTokenResponse(respBody)
	if errStore != nil {
		m.errorf("bad refresh response, falling back to acquisition: %v", errStore)
		return m.acquire(ctx)
	}
	return refreshed, nil
}

func (m *Manager) sendTokenRequest(ctx context.Context, grant map[string]string) (int, []byte, error) {
	buf, errJSON := sonnet.Marshal(grant)
	if errJSON != nil {
		return 0, nil, fmt.Errorf("marshal token request: %w", errJSON)
	}

	ctx, cancel := context.WithTimeout(ctx, m.options.Timeout)
	defer cancel()

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, m.options.TokenURL, bytes.NewReader(buf))
	if errReq != nil {
		return 0, nil, fmt.Errorf("build token request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	begin := time.Now()

	resp, errDo := m.options.HTTPClient.Do(req)
	if errDo != nil {
		return 0, nil, fmt.Errorf("token request: %w", errDo)
	}
	defer resp.Body.Close()

	respBody, errBody := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if errBody != nil {
		return resp.StatusCode, nil, fmt.Errorf("read token response: %w", errBody)
	}

	m.debugf("token request: status:%d elapsed:%v", resp.StatusCode, time.Since(begin))

	return resp.StatusCode, respBody, nil
}

// storeTokenResponse parses a successful token response and replaces the
// cached state wholesale.
func (m *Manager) storeTokenResponse(body []byte) (token.Token, error) {
	t, errParse := parseTokenResponse(body, m.options.TimeSource())
	if errParse != nil {
		return token.Token{}, errParse
	}

	m.debugf("saving new token, deadline=%v scope=%q", t.Deadline, t.Scope)
	if errPut := m.options.Cache.Put(t); errPut != nil {
		m.errorf("cache put error: %v", errPut)
	}

	return t, nil
}

// parseTokenResponse maps {access_token, refresh_token?, expires_in, scope?}
// into token state. expires_in is accepted as a JSON number or a numeric
// string; some token servers emit either.
func parseTokenResponse(body []byte, issuedAt time.Time) (token.Token, error) {
	v, errParse := fastjson.ParseBytes(body)
	if errParse != nil {
		return token.Token{}, &AuthError{Code: "invalid_response", Description: string(body)}
	}

	access := string(v.GetStringBytes("access_token"))
	if access == "" {
		return token.Token{}, &AuthError{Code: "invalid_response", Description: "missing access_token in token response"}
	}

	t := token.Token{
		AccessToken:  access,
		RefreshToken: string(v.GetStringBytes("refresh_token")),
		Scope:        string(v.GetStringBytes("scope")),
	}
	if t.Scope == "" {
		t.Scope = "read write"
	}

	if seconds := expiresInSeconds(v); seconds > 0 {
		t.SetExpiration(issuedAt.Add(time.Duration(seconds) * time.Second))
	}

	return t, nil
}

func expiresInSeconds(v *fastjson.Value) int {
	ei := v.Get("expires_in")
	if ei == nil {
		return 0
	}
	switch ei.Type() {
	case fastjson.TypeNumber:
		n, _ := ei.Int()
		return n
	case fastjson.TypeString:
		sb, _ := ei.StringBytes()
		n, _ := strconv.Atoi(string(sb))
		return n
	}
	return 0
}

// authErrorFromBody synthesizes AuthError from a non-2xx token response.
func authErrorFromBody(body []byte) *AuthError {
	v, errParse := fastjson.ParseBytes(body)
	if errParse != nil || v.Type() != fastjson.TypeObject {
		return &AuthError{Code: "invalid_response", Description: string(body)}
	}

	code := string(v.GetStringBytes("error"))
	if code == "" {
		code = "unknown_error"
	}
	description := string(v.GetStringBytes("error_description"))
	if description == "" {
		description = string(v.GetStringBytes("message"))
	}
	if description == "" {
		description = "Authentication failed"
	}
	return &AuthError{Code: code, Description: description}
}
