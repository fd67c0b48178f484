// Package client is a Go consumer of the availability HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bassista/studio_calendar/internal/repository"
)

const availabilityPath = "/api/availability"

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx answer of the API. errors.Is matches it against
// ErrBadRequest, ErrUnauthorized and ErrServer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("availability api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("availability api: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
}

type Option func(*Client)

// WithCredentials sends HTTP Basic credentials on status changes.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:4000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListAvailability returns the explicitly stored records.
func (c *Client) ListAvailability(ctx context.Context) ([]repository.Record, error) {
	var records []repository.Record
	if err := c.do(ctx, http.MethodGet, availabilityPath, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []repository.Record{}
	}
	return records, nil
}

// GetStatus returns the effective status of key.
func (c *Client) GetStatus(ctx context.Context, key repository.DateKey) (repository.Record, error) {
	var rec repository.Record
	err := c.do(ctx, http.MethodGet, availabilityPath+"/"+url.PathEscape(key.String()), nil, &rec)
	return rec, err
}

// SetStatus stores status for key.
func (c *Client) SetStatus(ctx context.Context, key repository.DateKey, status repository.Status) error {
	body := repository.Record{Date: key, Status: status}
	return c.do(ctx, http.MethodPut, availabilityPath+"/"+url.PathEscape(key.String()), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" && method != http.MethodGet {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
