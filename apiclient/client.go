// Package apiclient performs single authenticated HTTP calls against the
// ImagineAnything API and classifies responses into payloads or typed errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"github.com/valyala/fastjson"
)

// SDKVersion is reported in the User-Agent of every request.
const SDKVersion = "0.1.0"

// DefaultUserAgent identifies this SDK to the API.
const DefaultUserAgent = "imagineanything-go/" + SDKVersion

// DefaultTimeout bounds each API call.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 1 << 20

// HTTPDoer is interface for http client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider supplies bearer tokens and accepts invalidation when the
// API refuses one.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
	Invalidate() error
}

// Options define client options.
type Options struct {
	// BaseURL of the API, e.g. https://imagineanything.com.
	BaseURL string

	// Tokens provides bearer tokens for authenticated requests.
	Tokens TokenProvider

	// HTTPClient is the HTTP client to use to make requests.
	// If nil, http.DefaultClient is used.
	HTTPClient HTTPDoer

	// Timeout bounds each call. 0 defaults to 30 seconds.
	Timeout time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logging function, if undefined defaults to log.Printf
	Logf func(format string, v ...any)

	// Enable debug logging.
	Debug bool
}

// Client executes one authenticated (or anonymous) request at a time;
// it holds no locks and calls may run fully in parallel.
type Client struct {
	options Options
}

// New creates a client.
func New(options Options) *Client {
	if options.HTTPClient == nil {
		options.HTTPClient = http.DefaultClient
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultTimeout
	}
	if options.UserAgent == "" {
		options.UserAgent = DefaultUserAgent
	}
	if options.Logf == nil {
		options.Logf = log.Printf
	}
	for len(options.BaseURL) > 0 && options.BaseURL[len(options.BaseURL)-1] == '/' {
		options.BaseURL = options.BaseURL[:len(options.BaseURL)-1]
	}
	return &Client{
		options: options,
	}
}

func (c *Client) errorf(format string, v ...any) {
	c.options.Logf("ERROR: "+format, v...)
}

func (c *Client) debugf(format string, v ...any) {
	if c.options.Debug {
		c.options.Logf("DEBUG: "+format, v...)
	}
}

// Request performs one API call and returns the raw JSON payload.
// A 204 yields a nil payload. Any >= 400 status returns *APIError; a 2xx
// body that is not valid JSON returns a generic *APIError as well, since a
// malformed success cannot be safely ignored. Token acquisition errors
// propagate unchanged.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body any, authenticated bool) (json.RawMessage, error) {

	target := c.options.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		buf, errJSON := sonnet.Marshal(body)
		if errJSON != nil {
			return nil, fmt.Errorf("marshal request body: %w", errJSON)
		}
		bodyReader = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	req, errReq := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if errReq != nil {
		return nil, fmt.Errorf("build request: %w", errReq)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.options.UserAgent)

	if authenticated {
		accessToken, errToken := c.options.Tokens.GetAccessToken(ctx)
		if errToken != nil {
			return nil, errToken
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.send(req)
}

// send executes the request and classifies the response.
func (c *Client) send(req *http.Request) (json.RawMessage, error) {
	begin := time.Now()

	resp, errDo := c.options.HTTPClient.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, errDo)
	}
	defer resp.Body.Close()

	respBody, errBody := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if errBody != nil {
		return nil, fmt.Errorf("read response: %w", errBody)
	}

	c.debugf("%s %s: status:%d elapsed:%v", req.Method, req.URL.Path, resp.StatusCode, time.Since(begin))

	return c.classify(resp.StatusCode, respBody)
}

func (c *Client) classify(status int, body []byte) (json.RawMessage, error) {
	if status == http.StatusNoContent {
		return nil, nil
	}

	if status >= 400 {
		apiErr := newAPIError(status, body)
		if status == http.StatusUnauthorized && c.options.Tokens != nil {
			//
			// the server refused our token; clear it so the next call
			// re-acquires instead of repeating the same stale token.
			//
			if err := c.options.Tokens.Invalidate(); err != nil {
				c.errorf("token invalidate error: %v", err)
			}
		}
		return nil, apiErr
	}

	if err := fastjson.ValidateBytes(body); err != nil {
		return nil, &APIError{
			Kind:       KindGeneric,
			StatusCode: status,
			Code:       "invalid_response",
			Message:    string(body),
		}
	}

	return body, nil
}
