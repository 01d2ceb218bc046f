package httpx

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreaker guards calls to a remote moderation service. A tripped
// breaker fails fast, which the clients map onto their degraded verdicts.
type CircuitBreaker interface {
	Execute(fn func() error) error
}

type breakerWrapper struct {
	cb *gobreaker.CircuitBreaker
}

// NewCircuitBreaker trips after maxFailures consecutive failures and probes
// again once timeout has elapsed.
func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	return &breakerWrapper{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
		}),
	}
}

func (w *breakerWrapper) Execute(fn func() error) error {
	_, err := w.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", w.cb.Name(), err)
	}
	return nil
}

// NoopBreaker executes calls directly. Used where breaker protection is
// disabled by configuration.
type NoopBreaker struct{}

func (NoopBreaker) Execute(fn func() error) error {
	return fn()
}
