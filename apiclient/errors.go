package apiclient

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"
)

// Kind tags an APIError with its failure class. Callers branch on Kind,
// not on the HTTP status.
type Kind int

// One kind per HTTP status class.
const (
	KindGeneric        Kind = iota // any other >= 400, or malformed 2xx body
	KindValidation                 // 400
	KindAuthentication             // 401
	KindForbidden                  // 403
	KindNotFound                   // 404
	KindRateLimit                  // 429
	KindServer                     // >= 500
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	}
	return "api"
}

// APIError is the typed failure returned for any API-level error response.
type APIError struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string

	// Details carries the raw decoded error body for validation failures.
	Details map[string]any

	// RetryAfter is the rate-limit hint in seconds, when the server sent one.
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error [%d] %s: %s", e.Kind, e.StatusCode, e.Code, e.Message)
}

// newAPIError classifies a >= 400 response into the fixed taxonomy.
func newAPIError(status int, body []byte) *APIError {
	var data map[string]any
	if err := sonnet.Unmarshal(body, &data); err != nil {
		data = nil
	}

	code, _ := data["error"].(string)
	if code == "" {
		code = "unknown_error"
	}
	message, _ := data["message"].(string)
	if message == "" {
		message, _ = data["error_description"].(string)
	}
	if message == "" {
		message = "Unknown error"
	}

	apiErr := &APIError{
		StatusCode: status,
		Code:       code,
		Message:    message,
	}

	switch {
	case status == 400:
		apiErr.Kind = KindValidation
		apiErr.Details = data
	case status == 401:
		apiErr.Kind = KindAuthentication
	case status == 403:
		apiErr.Kind = KindForbidden
	case status == 404:
		apiErr.Kind = KindNotFound
	case status == 429:
		apiErr.Kind = KindRateLimit
		if retry, ok := data["retry_after"].(float64); ok {
			apiErr.RetryAfter = int(retry)
		}
	case status >= 500:
		apiErr.Kind = KindServer
	default:
		apiErr.Kind = KindGeneric
	}

	return apiErr
}
