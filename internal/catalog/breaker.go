// Package catalog guards product lookups made on behalf of the cart.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shoppyglobe/backend/internal/cart"
	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type Settings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Name:                "catalog",
		ConsecutiveFailures: 5,
		OpenTimeout:         10 * time.Second,
	}
}

// Breaker wraps a catalog with a circuit breaker. Lookups of missing
// products are answers, not failures, and never trip it.
type Breaker struct {
	next cart.Catalog
	cb   *gobreaker.CircuitBreaker[*domain.Product]
}

func NewBreaker(next cart.Catalog, s Settings, logger *zap.Logger) *Breaker {
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*domain.Product](st),
	}
}

func (b *Breaker) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := b.cb.Execute(func() (*domain.Product, error) {
		return b.next.GetByID(ctx, productID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, domain.Unavailable(err)
	}
	return p, err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
