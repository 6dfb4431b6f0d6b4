package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// Payload is the decoded claim set of a token. Keys and values are kept as
// parsed; numbers are json.Number.
type Payload map[string]any

// DecodePayload decodes the payload segment of a JWT without verifying the
// signature. It reports false when the token has no payload segment or the
// segment is not base64url-encoded JSON object text. Segments past the third
// are ignored.
func DecodePayload(token string) (Payload, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, false
	}
	data, ok := decodeSegment(parts[1])
	if !ok {
		return nil, false
	}
	return parseObject(data)
}

func decodeSegment(segment string) ([]byte, bool) {
	s := strings.NewReplacer("-", "+", "_", "/").Replace(segment)
	// Add base64 padding
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return data, true
}

func parseObject(data []byte) (Payload, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Payload(obj), true
}

// AccountID returns the account_id claim.
func (p Payload) AccountID() (int64, bool) {
	return p.Int("account_id")
}

// Username returns the username claim.
func (p Payload) Username() (string, bool) {
	return p.String("username")
}

// ExpiresAt returns the exp claim.
func (p Payload) ExpiresAt() (time.Time, bool) {
	return p.Time("exp")
}

// IssuedAt returns the iat claim.
func (p Payload) IssuedAt() (time.Time, bool) {
	return p.Time("iat")
}

// NotBefore returns the nbf claim.
func (p Payload) NotBefore() (time.Time, bool) {
	return p.Time("nbf")
}

// Expired reports whether exp lies at or before now. Tokens without exp never
// expire. Only used for display.
func (p Payload) Expired(now time.Time) bool {
	exp, ok := p.ExpiresAt()
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// String returns a string claim.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Int returns an integral numeric claim.
func (p Payload) Int(key string) (int64, bool) {
	switch n := p[key].(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// Time returns a NumericDate claim (seconds since the epoch).
func (p Payload) Time(key string) (time.Time, bool) {
	secs, ok := p.Int(key)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}
