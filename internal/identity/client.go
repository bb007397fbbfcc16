package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

// Auth endpoint paths on the identity server.
const (
	LoginPath    = "/api/v0/auth/login"
	RegisterPath = "/api/v0/auth/register"
	LogoutPath   = "/api/v0/auth/logout"
	RefreshPath  = "/api/v0/auth/refresh"
)

const defaultTimeout = 15 * time.Second

// IsAuthPath reports whether a request path targets one of the auth
// endpoints. The gateway uses this to keep token attachment and expiry
// recovery away from the auth flow itself.
func IsAuthPath(path string) bool {
	return strings.HasPrefix(path, "/api/v0/auth/")
}

// APIError carries the identity server's structured error payload verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity server returned status %d", e.Status)
}

// Client is a typed request/response mapping to the four remote auth
// operations. It holds no session state and performs no retries: expiry
// recovery and refresh orchestration belong to the gateway and the session
// service, never here.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. The identity client
// must never be pointed at the gateway transport, or refresh recovery would
// recurse into itself.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: defaultTimeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Login exchanges credentials for a token pair and profile snapshot.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, LoginPath, "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.post(ctx, RegisterPath, "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the session server-side. The bearer token is passed
// explicitly because logout is the one auth call made while authenticated.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.post(ctx, LogoutPath, accessToken, nil, nil)
}

// Refresh exchanges a refresh token for a fresh access/refresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp TokenPair
	if err := c.post(ctx, RefreshPath, "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, bearer string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "identity request failed before reaching server",
			"path", path,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeNetwork, "request never reached the identity server")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		apiErr := &APIError{Status: resp.StatusCode, Message: payload.Error}
		return dErrors.Wrap(apiErr, dErrors.CodeAPI, apiErr.Error())
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode identity response")
	}
	return nil
}
