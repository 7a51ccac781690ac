package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// GuardConfig configures a Guard.
type GuardConfig struct {
	Name     string
	Timeout  time.Duration // per call
	Failures uint32        // consecutive failures that open the breaker
	Cooldown time.Duration // how long the breaker stays open
}

// Guard wraps a Classifier with a per-call timeout and a circuit breaker so
// a failing model is skipped quickly instead of slowing every analysis.
type Guard struct {
	next    Classifier
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

// NewGuard wraps next.
func NewGuard(next Classifier, cfg GuardConfig) *Guard {
	if cfg.Name == "" {
		cfg.Name = "oracle"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	failures := cfg.Failures
	return &Guard{
		next:    next,
		timeout: cfg.Timeout,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    cfg.Name,
			Timeout: cfg.Cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			// An unsupported task is not a fault of the model.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrUnsupported)
			},
		}),
	}
}

// State reports the breaker state ("closed", "half-open" or "open").
func (g *Guard) State() string {
	return g.cb.State().String()
}

// ClassifySentiment calls the wrapped classifier through the breaker.
func (g *Guard) ClassifySentiment(ctx context.Context, text string) (Output, error) {
	return g.call(ctx, func(ctx context.Context) (Output, error) {
		return g.next.ClassifySentiment(ctx, text)
	})
}

// ClassifyEmotions calls the wrapped classifier through the breaker.
func (g *Guard) ClassifyEmotions(ctx context.Context, text string) (Output, error) {
	return g.call(ctx, func(ctx context.Context) (Output, error) {
		return g.next.ClassifyEmotions(ctx, text)
	})
}

func (g *Guard) call(ctx context.Context, fn func(context.Context) (Output, error)) (Output, error) {
	res, err := g.cb.Execute(func() (_ interface{}, err error) {
		// A panic counts as a failure of the model.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("classifier panicked: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		out, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return out, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return Output{}, fmt.Errorf("%w: circuit %s", ErrUnavailable, g.cb.State())
	case errors.Is(err, context.DeadlineExceeded):
		return Output{}, fmt.Errorf("%w: timed out after %s", ErrUnavailable, g.timeout)
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrUnsupported):
		return Output{}, err
	case err != nil:
		return Output{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res.(Output), nil
}
