// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the remote answers HTTP 429. The API is
// metered, so callers treat it as fatal instead of backing off.
var ErrRateLimited = errors.New("API rate limit exceeded (HTTP 429)")

// ErrNoRequestSlot is returned when the limiter refuses to wait, either
// because ctx is done or because the wait would outlast its deadline.
var ErrNoRequestSlot = errors.New("waiting for request slot")

// Client sends requests one at a time, waiting on a token bucket before
// each one.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter

	// UserAgent is set on requests that do not carry one.
	UserAgent string
}

// NewClient builds a Client allowing requestsPerMinute calls per minute.
// When requestsPerMinute is 0 requests are not paced.
func NewClient(timeout time.Duration, requestsPerMinute int) *Client {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(limit, 1),
	}
}

// Do waits for the limiter and executes req with ctx. An HTTP 429
// response is drained, closed and reported as ErrRateLimited; every other
// status is returned to the caller untouched.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoRequestSlot, err)
		}
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req = req.Clone(ctx)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrRateLimited)
	}
	return resp, nil
}

// Snippet reads at most n bytes of body for error messages.
func Snippet(body io.Reader, n int64) string {
	b, _ := io.ReadAll(io.LimitReader(body, n))
	return string(b)
}
