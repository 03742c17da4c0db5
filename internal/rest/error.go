package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned when the remote answers with a status outside [200,300).
type Error struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a
// remote error.
func StatusCode(err error) int {
	var restErr *Error
	if errors.As(err, &restErr) {
		return restErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the remote.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// MessageFunc extracts a human-readable message from a parsed error body.
// It returns "" when the body has no recognised message field.
type MessageFunc func(body any) string

// Fields returns a MessageFunc that picks the first non-empty top-level field
// among keys.
func Fields(keys ...string) MessageFunc {
	return func(body any) string {
		obj, ok := body.(map[string]any)
		if !ok {
			return ""
		}
		for _, key := range keys {
			if s := stringValue(obj[key]); s != "" {
				return s
			}
		}
		return ""
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return fmt.Sprintf("%.0f", val)
	case bool, int, int64:
		return fmt.Sprint(val)
	default:
		return ""
	}
}
