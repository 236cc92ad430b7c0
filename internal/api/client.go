// Package api is the HTTP client for the tab and record endpoints of the
// reference server. It implements the remote repositories the client-side
// domain services depend on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpggio/tabsync/internal/repository"
)

// ErrorBody is the JSON error payload returned by the server.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError describes a non-2xx response.
type StatusError struct {
	Status int
	Body   ErrorBody
}

func (e *StatusError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Body.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Role    string
	Timeout time.Duration
	HTTP    *http.Client
	Logger  *slog.Logger
}

// Client talks to the reference server.
type Client struct {
	base   *url.URL
	token  string
	role   string
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a client for the server at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}

	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:   base,
		token:  opts.Token,
		role:   opts.Role,
		http:   httpClient,
		logger: logger,
	}, nil
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
// Transport failures and 5xx responses wrap repository.ErrNetwork; other failures
// wrap the matching repository sentinel.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", repository.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 300 {
		statusErr := &StatusError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&statusErr.Body)
		return fmt.Errorf("%w: %w", classify(resp.StatusCode), statusErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %w", repository.ErrNetwork, method, path, err)
	}
	return nil
}

func classify(status int) error {
	switch status {
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusConflict:
		return repository.ErrConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		return repository.ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return repository.ErrInvalidInput
	}
	return repository.ErrNetwork
}

// Status returns the HTTP status behind err, 0 if err did not come from a response.
func Status(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}
