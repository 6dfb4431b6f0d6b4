package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHomeDir(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", "/tmp/test-home")
	if got := HomeDir(); got != "/tmp/test-home" {
		t.Errorf("expected /tmp/test-home, got %s", got)
	}

	t.Setenv("FEEDCLIENT_HOME", "")
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".feedclient")
	if got := HomeDir(); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestReadWriteCredentials(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("FEEDCLIENT_HOME", tmpDir)

	c := &Credentials{
		Token:     makeJWT(map[string]any{"account_id": 5}),
		Username:  "alice",
		AccountID: 5,
		LastLogin: "2024-01-01T00:00:00Z",
	}

	if err := WriteCredentials(c); err != nil {
		t.Fatalf("WriteCredentials failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, "auth.json"))
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}

	read, err := ReadCredentials()
	if err != nil {
		t.Fatalf("ReadCredentials failed: %v", err)
	}
	if *read != *c {
		t.Errorf("credentials mismatch: %+v vs %+v", read, c)
	}
}

func TestReadCredentialsMissing(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())

	if _, err := ReadCredentials(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestReadCredentialsCorrupt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FEEDCLIENT_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "auth.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadCredentials(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestWriteCredentialsEmptyToken(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())

	if err := WriteCredentials(&Credentials{Username: "bob"}); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("expected ErrEmptyToken, got %v", err)
	}
}

func TestRemoveCredentials(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())

	if err := RemoveCredentials(); err != nil {
		t.Fatalf("removing missing file should succeed: %v", err)
	}
	if err := WriteCredentials(&Credentials{Token: "a.b.c"}); err != nil {
		t.Fatal(err)
	}
	if err := RemoveCredentials(); err != nil {
		t.Fatalf("RemoveCredentials failed: %v", err)
	}
	if _, err := ReadCredentials(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected credentials to be gone, got %v", err)
	}
}

func TestNewCredentials(t *testing.T) {
	token := makeJWT(map[string]any{"account_id": 42, "username": "carol"})

	c := NewCredentials(token, "")
	if c.AccountID != 42 {
		t.Errorf("AccountID: got %d, want 42", c.AccountID)
	}
	if c.Username != "carol" {
		t.Errorf("Username: got %q, want carol", c.Username)
	}
	if c.LastLogin == "" {
		t.Error("LastLogin should be set")
	}

	c = NewCredentials(token, "dave")
	if c.Username != "dave" {
		t.Errorf("explicit username should win, got %q", c.Username)
	}
}

func TestDeriveAccountID(t *testing.T) {
	if got := DeriveAccountID(makeJWT(map[string]any{"account_id": 123})); got != 123 {
		t.Errorf("expected 123, got %d", got)
	}
	if got := DeriveAccountID(""); got != 0 {
		t.Errorf("expected 0 for empty token, got %d", got)
	}
	if got := DeriveAccountID("opaque"); got != 0 {
		t.Errorf("expected 0 for opaque token, got %d", got)
	}
	if got := DeriveAccountID(makeJWT(map[string]any{"sub": "x"})); got != 0 {
		t.Errorf("expected 0 without account_id, got %d", got)
	}
}

func TestStoredTokenSource(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())
	ts := StoredTokenSource()

	if _, err := ts.Token(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials before login, got %v", err)
	}

	exp := time.Unix(1700000000, 0)
	raw := makeJWT(map[string]any{"exp": exp.Unix()})
	if err := WriteCredentials(&Credentials{Token: raw}); err != nil {
		t.Fatal(err)
	}

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok.AccessToken != raw {
		t.Errorf("AccessToken: got %q, want %q", tok.AccessToken, raw)
	}
	if tok.Type() != "Bearer" {
		t.Errorf("Type: got %q, want Bearer", tok.Type())
	}
	if !tok.Expiry.Equal(exp) {
		t.Errorf("Expiry: got %v, want %v", tok.Expiry, exp)
	}
}

func TestBearerTokenOpaque(t *testing.T) {
	tok := BearerToken("opaque-token")
	if !tok.Expiry.IsZero() {
		t.Errorf("opaque token should have no expiry, got %v", tok.Expiry)
	}
	if tok.AccessToken != "opaque-token" {
		t.Errorf("AccessToken: got %q", tok.AccessToken)
	}
}
