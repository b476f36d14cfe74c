package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"course-dashboard/internal/status"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker stops calling the remote data API once it keeps failing and
// lets a single trial request through after OpenTimeout.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

type BreakerSettings struct {
	// MinRequests is the number of calls in the current interval before the
	// failure ratio is evaluated.
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
	HalfOpenMax  uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  10,
		FailureRatio: 0.6,
		Interval:     60 * time.Second,
		OpenTimeout:  30 * time.Second,
		HalfOpenMax:  1,
	}
}

func NewCircuitBreaker(name string, s BreakerSettings) *CircuitBreaker {
	return &CircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        name,
			MaxRequests: s.HalfOpenMax,
			Interval:    s.Interval,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return readyToTrip(counts, s.MinRequests, s.FailureRatio)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
			// A caller giving up says nothing about the remote side.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

func readyToTrip(counts gobreaker.Counts, minRequests uint32, ratio float64) bool {
	return counts.Requests >= minRequests &&
		float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
}

func (b *CircuitBreaker) Name() string {
	return b.cb.Name()
}

func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *CircuitBreaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}

// Execute runs req unless the breaker is open. Rejections wrap
// status.ErrCircuitOpen. A context that is already done is returned without
// touching the breaker.
func (b *CircuitBreaker) Execute(ctx context.Context, req func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, req(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", b.cb.Name(), status.ErrCircuitOpen, err)
	}
	return err
}
