// Package breaker wraps sony/gobreaker with the trip policy used for all
// outbound service calls: a run of consecutive failures opens the
// circuit, and after the reset window a single probe is allowed through.
package breaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"roomly/pkg/logger"
)

type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(name string, failures uint32, reset time.Duration, log *logger.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     reset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. When the circuit is open the call
// is rejected without invoking fn.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// IsOpen reports whether err means the breaker rejected the call rather
// than fn failing.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
