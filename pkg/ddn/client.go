// Package ddn holds thin typed clients for the DDN storage product REST APIs
// and per-tenant S3 access. These are the collaborators the test keywords
// drive; they carry no invariants beyond status-code checks, and their
// failures are what the reporting core records.
package ddn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ddn-qa/testharness/pkg/config"
)

const userAgent = "DDN-Test-Harness/1.0"

// APIError is a non-2xx response from a product API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ddn: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client calls the DDN product REST endpoints. One shared http.Client with
// bearer-key auth serves all products, mirroring how the keyword layer uses
// a single session.
type Client struct {
	eps  config.Endpoints
	http *http.Client
}

// NewClient builds a product API client from endpoint configuration.
func NewClient(eps config.Endpoints) *Client {
	return &Client{
		eps: eps,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying http.Client (tests, custom TLS).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// doJSON performs one JSON request/response cycle. A non-expected status is
// returned as *APIError with the body preserved for the failure record.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ddn: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("ddn: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.eps.APIKey)
	req.Header.Set("X-API-Secret", c.eps.APISecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ddn: %s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("ddn: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, out, http.StatusOK)
}

func (c *Client) post(ctx context.Context, url string, body, out any, wantStatus int) error {
	return c.doJSON(ctx, http.MethodPost, url, body, out, wantStatus)
}
