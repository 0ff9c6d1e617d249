package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"

	"github.com/sony/gobreaker"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUpstream = errors.New("upstream error")

	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 300 * time.Millisecond,
	MaxInterval:     3 * time.Second,
}

// upstream is one external API guarded by its own circuit breaker.
type upstream struct {
	name           string
	baseURL        string
	httpClient     *http.Client
	backoff        BackoffConfig
	breaker        *gobreaker.CircuitBreaker
	metricsManager *metrics.Manager
}

func newUpstream(
	name, baseURL string,
	httpClient *http.Client,
	backoff BackoffConfig,
	metricsManager *metrics.Manager,
) *upstream {
	return &upstream{
		name:       name,
		baseURL:    baseURL,
		httpClient: httpClient,
		backoff:    backoff,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnf("circuit breaker [%s]: %s -> %s", name, from, to)
			},
		}),
		metricsManager: metricsManager,
	}
}

// get fetches baseURL+path with retries on 429 and 5xx, returning the body of
// the first 2xx response. Every failure is wrapped in ErrUpstream.
func (u *upstream) get(ctx context.Context, path string) (_ []byte, err error) {
	defer func() {
		if err != nil && u.metricsManager != nil {
			u.metricsManager.CounterUpstreamFailures.WithLabelValues(u.name).Inc()
		}
	}()

	reqURL := u.baseURL + path
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, u.name, ctx.Err())
		}

		result, execErr := u.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, err
			}

			resp, err := u.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return io.ReadAll(resp.Body)
		})
		if execErr == nil {
			return result.([]byte), nil
		}

		if errors.Is(execErr, gobreaker.ErrOpenState) || errors.Is(execErr, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %w: %w", ErrUpstream, u.name, errCircuitOpen, execErr)
		}
		if !retryable(execErr) || attempt >= u.backoff.MaxRetries {
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, u.name, execErr)
		}

		delay := u.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if u.backoff.MaxInterval > 0 && delay > u.backoff.MaxInterval {
			delay = u.backoff.MaxInterval
		}
		log.Debugf("upstream %s attempt %d failed: %s; retrying in %s", u.name, attempt+1, execErr, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, u.name, ctx.Err())
		case <-timer.C:
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, errRateLimited) || errors.Is(err, errServerError)
}
