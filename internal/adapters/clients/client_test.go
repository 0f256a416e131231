package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-aggregator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-aggregator/internal/platform/config"
)

func testRetryConfig(attempts int) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func testCircuitConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		MaxFailures:   100,
		Timeout:       time.Minute,
		HalfOpenLimit: 1,
	}
}

func newClient(t *testing.T, cfg *Config) *Client {
	t.Helper()

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Config{BaseURL: "http://localhost"})
	assert.Error(t, err, "service name is required")
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quotes", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newClient(t, &Config{
		BaseURL:     server.URL,
		ServiceName: "test-service",
		Retry:       testRetryConfig(1),
		Circuit:     testCircuitConfig(),
	})

	resp, err := client.Get(context.Background(), "/quotes")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newClient(t, &Config{
		BaseURL:     server.URL,
		ServiceName: "test-service",
		Retry:       testRetryConfig(3),
		Circuit:     testCircuitConfig(),
	})

	resp, err := client.Get(context.Background(), "/quotes")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(t, &Config{
		BaseURL:     server.URL,
		ServiceName: "test-service",
		Retry:       testRetryConfig(2),
		Circuit:     testCircuitConfig(),
	})

	_, err := client.Get(context.Background(), "/quotes")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(t, &Config{
		BaseURL:     server.URL,
		ServiceName: "test-service",
		Retry:       testRetryConfig(3),
		Circuit:     testCircuitConfig(),
	})

	resp, err := client.Get(context.Background(), "/quotes")
	require.NoError(t, err, "4xx responses are returned to the caller, not retried")
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CircuitOpenRejectsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newClient(t, &Config{
		BaseURL:     server.URL,
		ServiceName: "test-service",
		Retry:       testRetryConfig(1),
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   1,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	})

	_, err := client.Get(context.Background(), "/quotes")
	require.Error(t, err)
	require.Equal(t, StateOpen, client.CircuitState())

	_, err = client.Get(context.Background(), "/quotes")
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestClient_InjectsRequestHeaders(t *testing.T) {
	var gotRequestID, gotCorrelationID, gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(middleware.HeaderRequestID)
		gotCorrelationID = r.Header.Get(middleware.HeaderCorrelationID)
		gotAPIKey = r.Header.Get("X-Api-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newClient(t, &Config{
		BaseURL:     server.URL,
		ServiceName: "test-service",
		Retry:       testRetryConfig(1),
		Circuit:     testCircuitConfig(),
		AuthFunc: func(req *http.Request) {
			req.Header.Set("X-Api-Key", "secret")
		},
	})

	ctx := middleware.ContextWithRequestID(context.Background(), "req-abc")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-xyz")

	resp, err := client.Get(ctx, "/quotes")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "req-abc", gotRequestID)
	assert.Equal(t, "corr-xyz", gotCorrelationID)
	assert.Equal(t, "secret", gotAPIKey)
}

func TestClient_BuildURL(t *testing.T) {
	client := newClient(t, &Config{
		BaseURL:     "http://localhost:8080/",
		ServiceName: "test-service",
	})

	assert.Equal(t, "http://localhost:8080/quotes", client.buildURL("/quotes"))
	assert.Equal(t, "http://localhost:8080/quotes", client.buildURL("quotes"))
}

func TestClient_CalculateBackoff(t *testing.T) {
	client := newClient(t, &Config{
		ServiceName: "test-service",
		Retry: config.RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
		},
	})

	// No jitter configured, so growth is deterministic until the cap.
	assert.Equal(t, 200*time.Millisecond, client.calculateBackoff(1))
	assert.Equal(t, 400*time.Millisecond, client.calculateBackoff(2))
	assert.Equal(t, time.Second, client.calculateBackoff(5))
}

func TestClient_CalculateBackoff_Jitter(t *testing.T) {
	client := newClient(t, &Config{
		ServiceName: "test-service",
		Retry: config.RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.25,
		},
	})

	for range 50 {
		backoff := client.calculateBackoff(1)
		assert.GreaterOrEqual(t, backoff, 150*time.Millisecond)
		assert.LessOrEqual(t, backoff, 250*time.Millisecond)
	}
}
