package auth

import "errors"

var (
	ErrNoCredentials = errors.New("no credentials found; run 'login' first")
	ErrEmptyToken    = errors.New("empty session token")
)
