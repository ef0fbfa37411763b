// Package cart holds the rules that keep a cart consistent with the catalog:
// merging lines, snapshot pricing, stock checks and totals.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shoppyglobe/backend/internal/domain"
)

// DefaultQuantity is used when an add request does not specify a quantity.
const DefaultQuantity = 1

// Catalog is the read-only product lookup the engine consults.
type Catalog interface {
	GetByID(ctx context.Context, productID string) (*domain.Product, error)
}

type Engine struct {
	catalog Catalog
	newID   func() string
	now     func() time.Time
}

type Option func(*Engine)

func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

func WithClock(f func() time.Time) Option {
	return func(e *Engine) { e.now = f }
}

func NewEngine(catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddItem merges quantity of productID into c. An existing line for the same
// product keeps its snapshot price; a new line snapshots the current product.
//
// Stock is validated against the requested increment only, not against the
// quantity already in the cart.
func (e *Engine) AddItem(ctx context.Context, c domain.Cart, productID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return c, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidArgument)
	}

	product, err := e.lookup(ctx, productID)
	if err != nil {
		return c, err
	}
	if product.Stock < quantity {
		return c, fmt.Errorf("product %s is %w", productID, domain.ErrOutOfStock)
	}

	next := c.Clone()
	if i := next.FindByProduct(productID); i >= 0 {
		next.Items[i].Quantity += quantity
	} else {
		next.Items = append(next.Items, domain.CartItem{
			ID:        e.newID(),
			ProductID: productID,
			Title:     product.Title,
			Price:     product.Price,
			Thumbnail: product.Thumbnail,
			Quantity:  quantity,
		})
	}

	e.finish(&next)
	return next, nil
}

// UpdateItemQuantity sets the quantity of line itemID after re-validating
// stock against the catalog. The line price is not refreshed.
func (e *Engine) UpdateItemQuantity(ctx context.Context, c domain.Cart, itemID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return c, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidArgument)
	}

	i := c.FindItem(itemID)
	if i < 0 {
		return c, domain.ErrItemNotFound
	}

	product, err := e.lookup(ctx, c.Items[i].ProductID)
	if err != nil {
		return c, err
	}
	if product.Stock < quantity {
		return c, fmt.Errorf("not enough stock for product %s: %w", product.ID, domain.ErrOutOfStock)
	}

	next := c.Clone()
	next.Items[i].Quantity = quantity

	e.finish(&next)
	return next, nil
}

// RemoveItem drops line itemID. Unknown ids leave the items untouched.
func (e *Engine) RemoveItem(c domain.Cart, itemID string) domain.Cart {
	next := c.Clone()
	kept := next.Items[:0]
	for _, item := range next.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	next.Items = kept

	e.finish(&next)
	return next
}

func (e *Engine) Clear(c domain.Cart) domain.Cart {
	next := c
	next.Items = []domain.CartItem{}

	e.finish(&next)
	return next
}

func (e *Engine) lookup(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := e.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Unavailable(err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (e *Engine) finish(c *domain.Cart) {
	c.Recalculate()
	c.UpdatedAt = e.now()
}
