package account

import "errors"

var (
	// ErrNoToken is returned when a login succeeds without issuing a token.
	ErrNoToken = errors.New("login response did not contain a token")
)
