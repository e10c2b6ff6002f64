// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDo_Success(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 0)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_RateLimitedIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 0)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/fact/search", nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "/api/v1/fact/search")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_OtherErrorsPassThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 0)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDo_LimiterHonoursContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// One request per hour: the first call takes the only token.
	c := &Client{HTTP: ts.Client(), Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Do(ctx, req)
	assert.ErrorIs(t, err, ErrNoRequestSlot)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestNewClientPacing(t *testing.T) {
	c := NewClient(time.Second, 120)
	assert.Equal(t, rate.Limit(2), c.Limiter.Limit())

	unpaced := NewClient(time.Second, 0)
	assert.Equal(t, rate.Inf, unpaced.Limiter.Limit())
}
