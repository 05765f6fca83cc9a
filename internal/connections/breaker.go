package connections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrSourceUnavailable is returned while the breaker is refusing calls.
var ErrSourceUnavailable = errors.New("connection source temporarily unavailable")

// BreakerSettings configures a BreakerSource.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// BreakerSource wraps a Source with a circuit breaker so a failing scoring
// backend is not hammered on every slider tweak.
type BreakerSource struct {
	next   Source
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerSource wraps next with a circuit breaker.
func NewBreakerSource(next Source, settings BreakerSettings, logger *slog.Logger) *BreakerSource {
	if logger == nil {
		logger = slog.Default()
	}
	b := &BreakerSource{next: next, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("connection source breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A cancelled request says nothing about the backend's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return b
}

// State returns the breaker's current state.
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}

// Connections forwards to the wrapped source unless the breaker is open.
func (b *BreakerSource) Connections(ctx context.Context, focusKey string) ([]Connection, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Connections(ctx, focusKey)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return nil, err
	}
	conns, _ := result.([]Connection)
	return conns, nil
}
