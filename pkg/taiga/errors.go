package taiga

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the Taiga API, carrying the HTTP status
// and the error detail Taiga put in the body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("taiga: %s (status %d)", e.Detail, e.StatusCode)
}

// IsNotFound reports whether err is a Taiga 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a Taiga 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// newAPIError extracts the error detail from a Taiga error body. Taiga
// answers with {"_error_message": ...} or {"detail": ...} depending on the
// endpoint; anything else falls back to the raw body.
func newAPIError(status int, body []byte) *APIError {
	detail := strings.TrimSpace(string(body))

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg, ok := payload["_error_message"].(string); ok && msg != "" {
			detail = msg
		} else if msg, ok := payload["detail"].(string); ok && msg != "" {
			detail = msg
		}
	}

	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Detail: detail}
}
