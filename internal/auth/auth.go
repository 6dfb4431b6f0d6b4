package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const credentialsFilename = "auth.json"

// fileMu serializes writes to auth.json within the process.
var fileMu sync.Mutex

// Credentials represents the session stored in auth.json.
type Credentials struct {
	Token     string `json:"token"`
	Username  string `json:"username,omitempty"`
	AccountID int64  `json:"account_id,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

// HomeDir returns the client storage directory path.
func HomeDir() string {
	if d := os.Getenv("FEEDCLIENT_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".feedclient")
}

func credentialsPath() string {
	return filepath.Join(HomeDir(), credentialsFilename)
}

// NewCredentials builds credentials for a freshly issued token. The account
// ID comes from the token payload when it carries one.
func NewCredentials(token, username string) *Credentials {
	c := &Credentials{
		Token:     token,
		Username:  username,
		AccountID: DeriveAccountID(token),
		LastLogin: NowISO8601(),
	}
	if c.Username == "" {
		if p, ok := DecodePayload(token); ok {
			c.Username, _ = p.Username()
		}
	}
	return c
}

// ReadCredentials loads auth.json from the home directory.
func ReadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(credentialsPath())
	if err != nil {
		return nil, ErrNoCredentials
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ErrNoCredentials
	}
	if c.Token == "" {
		return nil, ErrNoCredentials
	}
	return &c, nil
}

// WriteCredentials persists the session to the home directory with 0600 permissions.
func WriteCredentials(c *Credentials) error {
	if c == nil || c.Token == "" {
		return ErrEmptyToken
	}
	fileMu.Lock()
	defer fileMu.Unlock()

	dir := HomeDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("unable to create client home directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(credentialsPath(), data, 0o600)
}

// RemoveCredentials deletes auth.json. A missing file is not an error.
func RemoveCredentials() error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if err := os.Remove(credentialsPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to remove credentials: %w", err)
	}
	return nil
}

// DeriveAccountID extracts the account ID from a token's payload, or 0.
func DeriveAccountID(token string) int64 {
	if token == "" {
		return 0
	}
	p, ok := DecodePayload(token)
	if !ok {
		return 0
	}
	id, _ := p.AccountID()
	return id
}

// Payload decodes the stored token's payload.
func (c *Credentials) Payload() (Payload, bool) {
	if c == nil {
		return nil, false
	}
	return DecodePayload(c.Token)
}

// NowISO8601 returns the current UTC time in ISO 8601 format.
func NowISO8601() string {
	return time.Now().UTC().Format(time.RFC3339)
}
