package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// BreakerClient runs a Client behind a gobreaker circuit breaker. 5xx
// responses count as failures.
type BreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	state   prometheus.Gauge
	logger  *slog.Logger
}

// NewBreakerClient wraps client. state may be nil; when set it tracks the
// breaker state as 0 closed, 1 half-open, 2 open.
func NewBreakerClient(client *Client, cfg BreakerConfig, state prometheus.Gauge, logger *slog.Logger) *BreakerClient {
	bc := &BreakerClient{client: client, state: state, logger: logger}
	bc.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			bc.setState(to)
		},
	})
	bc.setState(gobreaker.StateClosed)
	return bc
}

func (c *BreakerClient) setState(s gobreaker.State) {
	if c.state == nil {
		return
	}
	switch s {
	case gobreaker.StateClosed:
		c.state.Set(0)
	case gobreaker.StateHalfOpen:
		c.state.Set(1)
	case gobreaker.StateOpen:
		c.state.Set(2)
	}
}

func (c *BreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			_ = resp.Body.Close()
			return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, body)
		}
		return resp, nil
	})
}

func (c *BreakerClient) State() gobreaker.State {
	return c.breaker.State()
}

// IsCircuitOpen reports whether err came from a rejecting breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
