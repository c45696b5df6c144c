// Package authapi is the HTTP client for the backend's authentication
// endpoints.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20

	LoginPath   = "/auth/login"
	LogoutPath  = "/auth/logout"
	RefreshPath = "/auth/refresh"
)

// Config captures the settings for talking to the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default instrumented client.
	HTTPClient *http.Client
}

// Client implements ports.AuthClient. It does not retry.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient applies a default timeout when none is provided.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), http: hc}
}

// envelope is the backend's response wrapper.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type refreshData struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var env envelope[loginData]
	if err := c.post(ctx, LoginPath, "", loginRequest{Email: email, Password: password}, &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.Token == "" || env.Data.User == nil {
		return nil, domain.NewProtocolError(errors.New("login response missing token or user"))
	}
	return &ports.LoginResult{Token: env.Data.Token, User: env.Data.User}, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	var env envelope[struct{}]
	return c.post(ctx, LogoutPath, token, nil, &env)
}

func (c *Client) Refresh(ctx context.Context, token string) (string, error) {
	var env envelope[refreshData]
	if err := c.post(ctx, RefreshPath, token, nil, &env); err != nil {
		return "", err
	}
	if env.Data == nil || env.Data.Token == "" {
		return "", domain.NewProtocolError(errors.New("refresh response missing token"))
	}
	return env.Data.Token, nil
}

// envelopeStatus lets post read the outcome of any envelope type.
type envelopeStatus interface {
	outcome() (bool, string)
}

func (e *envelope[T]) outcome() (bool, string) { return e.Success, e.Error }

// post sends body as JSON and decodes the envelope into out. Every failure
// is a *domain.AuthError.
func (c *Client) post(ctx context.Context, path, token string, body any, out envelopeStatus) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return domain.NewProtocolError(fmt.Errorf("encode request: %w", err))
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return domain.NewProtocolError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewConnectivityError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.NewConnectivityError(err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return domain.NewConnectivityError(fmt.Errorf("%s: status %d", path, resp.StatusCode))
		}
		return domain.NewProtocolError(fmt.Errorf("%s: decode response (status %d): %w", path, resp.StatusCode, err))
	}

	ok, msg := out.outcome()
	switch {
	case ok:
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return domain.NewConnectivityError(fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, msg))
	default:
		return domain.NewCredentialsError(msg)
	}
}
