// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds each request.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultUserAgent is sent on every request.
	DefaultUserAgent = "carepath-tui"

	// RequestIDHeader correlates client log lines with server traces.
	RequestIDHeader = "X-Request-ID"
)

// Config configures a Client. Zero values take defaults.
type Config struct {
	DBAPIURL   string
	ChatAPIURL string
	Timeout    time.Duration
	UserAgent  string

	// RequestsPerSecond throttles outgoing requests; 0 disables throttling.
	RequestsPerSecond float64

	// HTTPClient replaces the default client (tests, custom transports).
	HTTPClient *http.Client
}

// Client talks to the data and inference services. It is safe for
// concurrent use.
type Client struct {
	dbURL     string
	chatURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a client, stripping trailing slashes from both base URLs.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			Timeout: timeout,
		}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	c := &Client{
		dbURL:     trimBase(cfg.DBAPIURL),
		chatURL:   trimBase(cfg.ChatAPIURL),
		userAgent: ua,
		http:      httpClient,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// DBAPIURL returns the normalized data service base URL.
func (c *Client) DBAPIURL() string { return c.dbURL }

// ChatAPIURL returns the normalized inference service base URL.
func (c *Client) ChatAPIURL() string { return c.chatURL }

func trimBase(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

// =============================================================================
// Request/Response Logging (no bodies: queries carry patient data)
// =============================================================================

func logRequest(req *http.Request) {
	log.Printf("API Request: %s %s [%s]", req.Method, req.URL.Path, req.Header.Get(RequestIDHeader))
}

func logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %s %d (%v) [%s]", req.URL.Path, resp.StatusCode,
		duration.Round(time.Millisecond), req.Header.Get(RequestIDHeader))
}

// =============================================================================
// Request plumbing
// =============================================================================

// do sends a request and decodes a 2xx JSON body into out. All failures are
// returned as *NetworkError tagged with op.
func (c *Client) do(ctx context.Context, op, method, url string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Op: op, Err: err}
		}
	}

	logRequest(req)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("API Error: %s %v", req.URL.Path, err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	logResponse(req, resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			ne := statusError(op, resp, nil)
			ne.Err = err
			return ne
		}
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// readResponse reads at most MaxResponseSize bytes of the body.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
