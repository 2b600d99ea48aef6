package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherpi/internal/metrics"
	"github.com/i474232898/weatherpi/internal/weather"
)

// HTTPClientConfig bundles the HTTP client and circuit breaker settings of a provider.
type HTTPClientConfig struct {
	Client *http.Client

	// The circuit opens after this many consecutive failures and stays open for OpenTimeout.
	MaxConsecutiveFailures uint32
	OpenTimeout            time.Duration
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string, cfg HTTPClientConfig) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 2 * time.Minute
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
}

// doRequest executes a single request through the circuit breaker. There is no retry:
// callers decide what a failed refresh means. Every failure is reported as
// weather.ErrUpstreamUnavailable with the cause wrapped.
func doRequest(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrUpstreamUnavailable, errNoHTTPClient)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req.WithContext(ctx))
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequestsTotal.WithLabelValues(provider, "circuit_open").Inc()
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrUpstreamUnavailable, errCircuitOpen, err)
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%w: %w", weather.ErrUpstreamUnavailable, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", weather.ErrUpstreamUnavailable)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(provider, "ok").Inc()
	return resp, nil
}
