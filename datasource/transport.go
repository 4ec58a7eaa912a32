package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker in front of the weather API.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before letting a probe through
	Cooldown time.Duration
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxFailures: 5,
		Cooldown:    30 * time.Second,
	}
}

// BreakerClient sends requests through a circuit breaker. A request is made
// once; there are no retries. 5xx responses and transport errors count as
// failures, cancelled requests do not. While the breaker is open requests fail
// without reaching the network.
type BreakerClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewBreakerClient wraps httpClient. The logger receives breaker state changes.
func NewBreakerClient(name string, httpClient *http.Client, settings BreakerSettings, logger *slog.Logger) *BreakerClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerSettings().MaxFailures
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a query the caller abandoned says nothing about the upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerClient{client: httpClient, breaker: cb}
}

// Do executes req. The caller closes the body of a returned response.
func (c *BreakerClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= 500 {
			r.Body.Close()
			return nil, &APIError{StatusCode: r.StatusCode}
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// State reports the breaker state, mostly for logs and tests.
func (c *BreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
