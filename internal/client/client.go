// Package client is a typed HTTP client for the planboard API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type Config struct {
	BaseURL string
	// Token returns the bearer token for each attempt, so a refreshed
	// token is picked up between retries.
	Token      func(ctx context.Context) (string, error)
	HTTPClient *http.Client

	MaxTries        uint
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL string
	token   func(ctx context.Context) (string, error)
	http    *http.Client

	maxTries        uint
	maxElapsedTime  time.Duration
	initialInterval time.Duration
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 4
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = 30 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.Token == nil {
		cfg.Token = func(context.Context) (string, error) { return "", nil }
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		token:           cfg.Token,
		http:            cfg.HTTPClient,
		maxTries:        cfg.MaxTries,
		maxElapsedTime:  cfg.MaxElapsedTime,
		initialInterval: cfg.InitialInterval,
	}
}

// do sends one API call with bounded exponential backoff. 429 is retried
// for every method. 5xx and transport errors are retried only for
// idempotent methods, since a POST may have committed before its response
// was lost. Other 4xx responses are permanent.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			var zero T
			return zero, fmt.Errorf("encoding request: %w", err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		var out T
		err := c.send(ctx, method, path, payload, &out)
		if err == nil {
			return out, nil
		}
		if !shouldRetry(method, StatusCode(err)) {
			return out, backoff.Permanent(err)
		}
		slog.DebugContext(ctx, "api call failed, retrying",
			"method", method, "path", path, "attempt", attempt, "error", err)
		return out, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithMaxElapsedTime(c.maxElapsedTime),
	)
}

// shouldRetry decides on a failed attempt. status is 0 for transport errors.
func shouldRetry(method string, status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if !idempotent(method) {
		return false
	}
	return status == 0 || status >= 500
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.token(ctx)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("resolving token: %w", err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// errorMessage pulls "message" out of an error body. Validation errors may
// carry a list of messages.
func errorMessage(body []byte) string {
	var parsed struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Message) == 0 {
		return strings.TrimSpace(string(body))
	}
	var single string
	if err := json.Unmarshal(parsed.Message, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(parsed.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(parsed.Message)
}
