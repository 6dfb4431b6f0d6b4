package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"

	"github.com/n0madic/go-feedclient/internal/auth"
	"github.com/n0madic/go-feedclient/internal/config"
)

// maxResponseBytes limits how much of a response body is read.
var maxResponseBytes int64 = 10 * 1024 * 1024 // 10 MB

// Client posts JSON to the feed backend.
type Client struct {
	Config     *config.Config
	HTTPClient *http.Client
	// Tokens supplies the bearer token for requests made WithAuth.
	Tokens oauth2.TokenSource
	// DumpTo receives raw request/response dumps in debug mode.
	DumpTo io.Writer

	dumpMu sync.Mutex
}

// New creates a client for cfg. A token set in the config takes precedence
// over the stored session.
func New(cfg *config.Config) *Client {
	ts := auth.StoredTokenSource()
	if cfg.Token != "" {
		ts = auth.StaticTokenSource(cfg.Token)
	}
	return &Client{
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Tokens:     ts,
		DumpTo:     os.Stderr,
	}
}

type requestOptions struct {
	authRequired bool
	authOptional bool
}

// Option configures a single request.
type Option func(*requestOptions)

// WithAuth attaches the session token as a bearer Authorization header.
func WithAuth() Option {
	return func(o *requestOptions) { o.authRequired = true }
}

// WithOptionalAuth attaches the session token when one is available and
// sends the request anonymously otherwise.
func WithOptionalAuth() Option {
	return func(o *requestOptions) { o.authOptional = true }
}

// PostJSON sends body as JSON to path and decodes a 2xx response into T.
// Non-2xx responses are returned as *APIError.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any, opts ...Option) (T, error) {
	var out T
	raw, err := c.post(ctx, path, body, opts...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unable to decode %s response: %w", path, err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, opts ...Option) ([]byte, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var token *oauth2.Token
	if o.authRequired {
		if c.Tokens == nil {
			return nil, auth.ErrNoCredentials
		}
		t, err := c.Tokens.Token()
		if err != nil {
			return nil, err
		}
		if t == nil || t.AccessToken == "" {
			return nil, auth.ErrNoCredentials
		}
		token = t
	} else if o.authOptional && c.Tokens != nil {
		if t, err := c.Tokens.Token(); err == nil && t != nil && t.AccessToken != "" {
			token = t
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.Config.Endpoint(path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	requestID := NewRequestID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if token != nil {
		token.SetAuthHeader(httpReq)
	}

	if c.Config.Verbose {
		slog.Info("api.request",
			"path", path,
			"auth", o.authRequired,
			"body_bytes", len(payload),
			"request_id", requestID,
		)
	}
	c.dumpRequest(httpReq)

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("unable to read %s response: %w", path, err)
	}
	c.dumpResponse(resp, respBody)

	if rid := responseRequestID(resp.Header); rid != "" {
		requestID = rid
	}
	if c.Config.Verbose {
		slog.Info("api.response", "path", path, "status", resp.StatusCode, "request_id", requestID)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Body:       respBody,
			RequestID:  requestID,
		}
	}
	return respBody, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
