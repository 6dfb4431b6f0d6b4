package apiclient

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

// NewRequestID returns a fresh random request ID.
func NewRequestID() string {
	return uuid.New().String()
}

// responseRequestID returns the request ID echoed by the server or a proxy in front of it.
func responseRequestID(headers http.Header) string {
	if headers == nil {
		return ""
	}
	for _, key := range []string{RequestIDHeader, "x-trace-id", "request-id", "cf-ray"} {
		if v := strings.TrimSpace(headers.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
