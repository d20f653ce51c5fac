package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errAbandoned     = errors.New("request abandoned by caller")
	errDecodeBody    = errors.New("decode body")
)

// NetworkError is returned for transport failures and non-success responses.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// statusError carries the status code out of the circuit breaker.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return fmt.Sprintf("%v: %d", e.err, e.code) }
func (e *statusError) Unwrap() error { return e.err }

// breakerSuccess tells the circuit breaker which outcomes say nothing bad
// about the gateway: calls the caller abandoned and 4xx answers.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, errAbandoned) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code < http.StatusInternalServerError
	}
	return false
}

// doRequestWithResilience executes the HTTP request with optional retries,
// exponential backoff, and a circuit breaker. Any failure comes back as a
// *NetworkError unless the context ended first.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || (cfg.Backoff.MaxRetries > 0 && cfg.Backoff.InitialInterval <= 0) {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)
		target := req.URL.String()

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil, fmt.Errorf("%w: %w", errAbandoned, execErr)
				}
				return nil, execErr
			}

			if resp.StatusCode >= 500 {
				_ = resp.Body.Close()
				return nil, &statusError{code: resp.StatusCode, err: errServerError}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				_ = resp.Body.Close()
				return nil, &statusError{code: resp.StatusCode, err: errUnexpected}
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &NetworkError{URL: target, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}

		netErr := &NetworkError{URL: target, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			netErr.StatusCode = se.code
		}
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, netErr
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
