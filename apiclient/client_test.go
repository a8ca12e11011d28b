package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token       string
	err         error
	invalidated int
}

func (f *fakeTokens) GetAccessToken(_ context.Context) (string, error) {
	return f.token, f.err
}

func (f *fakeTokens) Invalidate() error {
	f.invalidated++
	return nil
}

func newTestClient(baseURL string, tokens TokenProvider) *Client {
	return New(Options{
		BaseURL: baseURL,
		Tokens:  tokens,
		Logf:    func(_ string, _ ...any) {},
	})
}

func TestRequestSuccess(t *testing.T) {
	var gotAuth, gotAccept, gotUA string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"message":"ok"}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	payload, err := client.Request(context.Background(), http.MethodGet, "/api/posts", nil, nil, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"ok"}`, string(payload))
	assert.Equal(t, "Bearer tok1", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestRequestAnonymous(t *testing.T) {
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	_, err := client.Request(context.Background(), http.MethodGet, "/api/posts", nil, nil, false)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRequestNoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	payload, err := client.Request(context.Background(), http.MethodDelete, "/api/posts/p1", nil, nil, true)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRequestQueryAndBody(t *testing.T) {
	var gotQuery url.Values
	var gotBody []byte
	var gotContentType string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	query := url.Values{}
	query.Set("limit", "20")
	body := map[string]any{"content": "hello"}

	_, err := client.Request(context.Background(), http.MethodPost, "/api/posts", query, body, true)
	require.NoError(t, err)
	assert.Equal(t, "20", gotQuery.Get("limit"))
	assert.JSONEq(t, `{"content":"hello"}`, string(gotBody))
	assert.Equal(t, "application/json", gotContentType)
}

func TestRequestMalformedSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	_, err := client.Request(context.Background(), http.MethodGet, "/api/posts", nil, nil, true)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindGeneric, apiErr.Kind)
	assert.Equal(t, "invalid_response", apiErr.Code)
	assert.Equal(t, `<html>oops</html>`, apiErr.Message)
}

func TestErrorTaxonomy(t *testing.T) {
	testTable := []struct {
		status     int
		body       string
		kind       Kind
		code       string
		message    string
		retryAfter int
	}{
		{400, `{"error":"validation_error","message":"content too long"}`, KindValidation, "validation_error", "content too long", 0},
		{401, `{"error":"token_expired","message":"Token expired"}`, KindAuthentication, "token_expired", "Token expired", 0},
		{403, `{"error":"forbidden","message":"Not your article"}`, KindForbidden, "forbidden", "Not your article", 0},
		{404, `{"error":"not_found","message":"Post not found"}`, KindNotFound, "not_found", "Post not found", 0},
		{429, `{"error":"rate_limited","message":"Slow down","retry_after":30}`, KindRateLimit, "rate_limited", "Slow down", 30},
		{500, `{"error":"internal","message":"boom"}`, KindServer, "internal", "boom", 0},
		{418, `{"error":"teapot","message":"I am a teapot"}`, KindGeneric, "teapot", "I am a teapot", 0},
	}

	for _, data := range testTable {
		t.Run(fmt.Sprintf("status_%d", data.status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(data.status)
				fmt.Fprint(w, data.body)
			}))
			defer ts.Close()

			client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

			_, err := client.Request(context.Background(), http.MethodGet, "/api/x", nil, nil, true)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, data.kind, apiErr.Kind)
			assert.Equal(t, data.status, apiErr.StatusCode)
			assert.Equal(t, data.code, apiErr.Code)
			assert.Equal(t, data.message, apiErr.Message)
			assert.Equal(t, data.retryAfter, apiErr.RetryAfter)
		})
	}
}

func TestValidationErrorKeepsDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"validation_error","message":"bad","fields":{"content":"too long"}}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	_, err := client.Request(context.Background(), http.MethodPost, "/api/posts", nil, nil, true)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.NotNil(t, apiErr.Details)
	fields, ok := apiErr.Details["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "too long", fields["content"])
}

func TestErrorDescriptionFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"forbidden","error_description":"access denied"}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	_, err := client.Request(context.Background(), http.MethodGet, "/api/x", nil, nil, true)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "access denied", apiErr.Message)
}

func TestUnauthorizedInvalidatesToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"token_expired","message":"Token expired"}`)
	}))
	defer ts.Close()

	tokens := &fakeTokens{token: "stale"}
	client := newTestClient(ts.URL, tokens)

	_, err := client.Request(context.Background(), http.MethodGet, "/api/posts", nil, nil, true)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindAuthentication, apiErr.Kind)
	assert.Equal(t, 1, tokens.invalidated)
}

func TestTokenErrorPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("server must not be reached when token acquisition fails")
	}))
	defer ts.Close()

	tokenErr := errors.New("token endpoint down")
	client := newTestClient(ts.URL, &fakeTokens{err: tokenErr})

	_, err := client.Request(context.Background(), http.MethodGet, "/api/posts", nil, nil, true)
	assert.ErrorIs(t, err, tokenErr)
}

func TestUpload(t *testing.T) {
	var gotAuth string
	var gotFilename, gotPartType, gotContent string
	var gotFields = map[string]string{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		for key, values := range r.MultipartForm.Value {
			gotFields[key] = values[0]
		}

		file, header, errFile := r.FormFile("file")
		require.NoError(t, errFile)
		defer file.Close()

		gotFilename = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		content, _ := io.ReadAll(file)
		gotContent = string(content)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"media_abc123","url":"https://cdn.example/x.png","type":"image"}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, &fakeTokens{token: "tok1"})

	payload, err := client.Upload(context.Background(), "/api/upload", "picture.png",
		bytes.NewReader([]byte("png-bytes")),
		map[string]string{"folder": "images", "purpose": "post"})
	require.NoError(t, err)

	assert.Contains(t, string(payload), "media_abc123")
	assert.Equal(t, "Bearer tok1", gotAuth)
	assert.Equal(t, "picture.png", gotFilename)
	assert.Equal(t, "image/png", gotPartType)
	assert.Equal(t, "png-bytes", gotContent)
	assert.Equal(t, "images", gotFields["folder"])
	assert.Equal(t, "post", gotFields["purpose"])
}
