package auth

import (
	"golang.org/x/oauth2"
)

// storedTokenSource serves the token from auth.json. It is re-read on every
// call so a concurrent login or logout is picked up.
type storedTokenSource struct{}

// StoredTokenSource returns an oauth2.TokenSource backed by auth.json.
// Token fails with ErrNoCredentials when nobody is logged in.
func StoredTokenSource() oauth2.TokenSource {
	return storedTokenSource{}
}

func (storedTokenSource) Token() (*oauth2.Token, error) {
	c, err := ReadCredentials()
	if err != nil {
		return nil, err
	}
	return c.OAuth2Token(), nil
}

// StaticTokenSource returns a TokenSource for a single bearer token, e.g. one
// passed on the command line.
func StaticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(BearerToken(token))
}

// OAuth2Token converts the credentials to an oauth2.Token.
func (c *Credentials) OAuth2Token() *oauth2.Token {
	return BearerToken(c.Token)
}

// BearerToken wraps a raw token. Expiry is copied from the payload exp claim
// for display; the backend remains the authority on validity.
func BearerToken(raw string) *oauth2.Token {
	t := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if p, ok := DecodePayload(raw); ok {
		if exp, ok := p.ExpiresAt(); ok {
			t.Expiry = exp
		}
	}
	return t
}
