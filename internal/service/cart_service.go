package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shoppyglobe/backend/internal/cache"
	"github.com/shoppyglobe/backend/internal/cart"
	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/shoppyglobe/backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	cacheOpTimeout    = time.Second
	loadTimeout       = 5 * time.Second
	generationStripes = 256
)

// CartService loads a cart, runs one engine operation on it and persists the
// result. Every mutation is a full read-modify-write of the cart document.
type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	engine *cart.Engine
	logger *zap.Logger
	now    func() time.Time

	sfg         singleflight.Group // Prevents cache stampede
	fills       sync.WaitGroup
	generations [generationStripes]atomic.Uint64
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, engine *cart.Engine, logger *zap.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// GetCart returns the owner's cart, creating an empty one on first access.
// Concurrent readers of the same owner share one load. A caller that gives up
// does not cancel the load for the others.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	type result struct {
		cart *domain.Cart
		err  error
	}
	done := make(chan result, 1)
	s.fills.Go(func() {
		// Use singleflight to prevent multiple concurrent cache misses for same key
		v, err, _ := s.sfg.Do(ownerID, func() (any, error) {
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
			defer cancel()
			return s.loadOrCreate(loadCtx, ownerID)
		})
		if err != nil {
			done <- result{err: err}
			return
		}
		// callers sharing a flight must not share item storage
		c := v.(*domain.Cart).Clone()
		done <- result{cart: &c}
	})

	select {
	case res := <-done:
		return res.cart, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CartService) loadOrCreate(ctx context.Context, ownerID string) (*domain.Cart, error) {
	c, err := s.cache.Get(ctx, ownerID)
	if err == nil {
		c.Recalculate()
		return c, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("owner_id", ownerID), zap.Error(err))
	}

	// taken before the store read so a write landing after it voids the fill
	gen := s.generation(ownerID).Load()

	c, err = s.repo.FindByOwner(ctx, ownerID)
	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		c, err = s.repo.Save(ctx, domain.NewCart(ownerID, s.now()))
		if err != nil {
			return nil, domain.Unavailable(fmt.Errorf("create cart: %w", err))
		}
	case err != nil:
		return nil, domain.Unavailable(err)
	}
	c.Recalculate()

	s.fillCache(ownerID, c, gen)
	return c, nil
}

// AddItem adds quantity of a product to the owner's cart. A cart that does not
// exist yet is persisted only when the add succeeds.
func (s *CartService) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByOwner(ctx, ownerID)
	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		current = domain.NewCart(ownerID, s.now())
	case err != nil:
		return nil, domain.Unavailable(err)
	}

	next, err := s.engine.AddItem(ctx, *current, productID, quantity)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	next, err := s.engine.UpdateItemQuantity(ctx, *current, itemID, quantity)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

// RemoveItem drops the line with itemID. An unknown item id is not an error.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, itemID string) (*domain.Cart, error) {
	current, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, s.engine.RemoveItem(*current, itemID))
}

func (s *CartService) ClearCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	current, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, s.engine.Clear(*current))
}

// Wait blocks until background loads and cache fills have finished.
func (s *CartService) Wait() {
	s.fills.Wait()
}

func (s *CartService) load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	c, err := s.repo.FindByOwner(ctx, ownerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, c domain.Cart) (*domain.Cart, error) {
	saved, err := s.repo.Save(ctx, &c)
	if err != nil {
		return nil, domain.Unavailable(fmt.Errorf("save cart: %w", err))
	}
	s.invalidateCache(c.OwnerID)
	return saved, nil
}

// fillCache stores c unless a write for the owner was invalidated after gen
// was read. A write that races the Set itself is caught by the second check.
func (s *CartService) fillCache(ownerID string, c *domain.Cart, gen uint64) {
	snapshot := c.Clone()
	s.fills.Go(func() {
		if s.generation(ownerID).Load() != gen {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()
		if err := s.cache.Set(ctx, ownerID, &snapshot); err != nil {
			s.logger.Warn("cache set failed", zap.String("owner_id", ownerID), zap.Error(err))
			return
		}
		if s.generation(ownerID).Load() != gen {
			if err := s.cache.Delete(ctx, ownerID); err != nil {
				s.logger.Warn("stale cache fill not removed", zap.String("owner_id", ownerID), zap.Error(err))
			}
		}
	})
}

// invalidateCache bumps the owner's generation before deleting so that any fill
// started from an older read either skips or removes its own write.
func (s *CartService) invalidateCache(ownerID string) {
	s.generation(ownerID).Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// generation returns the invalidation counter for ownerID. Owners share a
// fixed set of counters, so a collision only costs a skipped fill.
func (s *CartService) generation(ownerID string) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ownerID))
	return &s.generations[h.Sum32()%generationStripes]
}

func validQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidArgument)
	}
	return nil
}
