package payment

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mmynk/payhive/internal/models"
)

// BreakerConfig controls the per-rail circuit breakers.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MaxRequests allowed while half-open.
	MaxRequests uint32
	// Interval resets failure counts while closed; zero never resets.
	Interval time.Duration
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		Timeout:             30 * time.Second,
		MaxRequests:         1,
		Interval:            time.Minute,
	}
}

// breakers holds one circuit breaker per rail. Only failures that point at
// the rail itself count: a user cancelling or a bad address does not trip it.
type breakers struct {
	cfg BreakerConfig

	mu  sync.RWMutex
	set map[models.Rail]*gobreaker.CircuitBreaker
}

func newBreakers(cfg BreakerConfig) *breakers {
	return &breakers{cfg: cfg, set: make(map[models.Rail]*gobreaker.CircuitBreaker)}
}

func (b *breakers) get(rail models.Rail) *gobreaker.CircuitBreaker {
	b.mu.RLock()
	cb, ok := b.set[rail]
	b.mu.RUnlock()
	if ok {
		return cb
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok = b.set[rail]; ok {
		return cb
	}

	threshold := b.cfg.ConsecutiveFailures
	cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rail-" + string(rail),
		MaxRequests: b.cfg.MaxRequests,
		Interval:    b.cfg.Interval,
		Timeout:     b.cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Payment rail circuit breaker changed state",
				"rail", rail,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	b.set[rail] = cb
	return cb
}

// countsAsHealthy treats failures caused by the caller as successes for the breaker.
func countsAsHealthy(err error) bool {
	if err == nil {
		return true
	}
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		gwErr = Classify(err)
	}
	switch gwErr.Kind {
	case KindUserRejected, KindInsufficientBalance, KindInvalidAddress:
		return true
	}
	return false
}

// state returns the breaker state for rail.
func (b *breakers) state(rail models.Rail) gobreaker.State {
	return b.get(rail).State()
}

func (b *breakers) open(rail models.Rail) bool {
	return b.state(rail) == gobreaker.StateOpen
}

// execute runs fn through the rail's breaker.
func (b *breakers) execute(rail models.Rail, fn func() (any, error)) (any, error) {
	return b.get(rail).Execute(fn)
}
