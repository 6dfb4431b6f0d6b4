package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Path       string
	Body       []byte
	RequestID  string
}

func (e *APIError) Error() string {
	msg := FormatError(e.StatusCode, e.Path, e.Body)
	if e.RequestID == "" {
		return msg
	}
	return fmt.Sprintf("%s (request_id: %s)", msg, e.RequestID)
}

// Message returns the backend's error text, or "" when the body has none.
func (e *APIError) Message() string {
	return ExtractErrorMessage(e.Body)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// FormatError formats an error from a backend response.
func FormatError(statusCode int, path string, rawBody []byte) string {
	status := fmt.Sprintf("%d", statusCode)
	if text := http.StatusText(statusCode); text != "" {
		status = fmt.Sprintf("%d %s", statusCode, text)
	}
	if msg := ExtractErrorMessage(rawBody); msg != "" {
		return fmt.Sprintf("%s returned HTTP %s: %s", path, status, msg)
	}
	if preview := compactBodyPreview(rawBody, 280); preview != "" {
		return fmt.Sprintf("%s returned HTTP %s with unparsed body: %s", path, status, preview)
	}
	return fmt.Sprintf("%s returned HTTP %s with empty error body", path, status)
}

// ExtractErrorMessage pulls the message out of an error body such as
// {"error": "..."} or {"error": {"message": "..."}}.
func ExtractErrorMessage(rawBody []byte) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" || !gjson.Valid(trimmed) {
		return ""
	}
	return messageFrom(gjson.Parse(trimmed))
}

func messageFrom(v gjson.Result) string {
	if !v.IsObject() {
		return ""
	}
	for _, key := range []string{"error", "message", "detail", "error_description", "reason"} {
		field := v.Get(key)
		if field.Type == gjson.String {
			if s := strings.TrimSpace(field.String()); s != "" {
				return s
			}
		}
	}
	if nested := v.Get("error"); nested.IsObject() {
		if msg := messageFrom(nested); msg != "" {
			return msg
		}
	}
	var msg string
	v.Get("errors").ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String {
			msg = strings.TrimSpace(item.String())
		} else {
			msg = messageFrom(item)
		}
		return msg == ""
	})
	return msg
}

func compactBodyPreview(rawBody []byte, maxLen int) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" {
		return ""
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	if len(clean) <= maxLen {
		return clean
	}
	return clean[:maxLen] + "..."
}
