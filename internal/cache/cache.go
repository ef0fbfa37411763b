package cache

import (
	"context"
	"errors"

	"github.com/shoppyglobe/backend/internal/domain"
)

// CartCache holds whole cart documents keyed by owner. Products are never
// cached: stock must be read fresh on every mutation.
type CartCache interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Set(ctx context.Context, ownerID string, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
