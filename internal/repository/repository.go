package repository

import (
	"context"

	"github.com/shoppyglobe/backend/internal/domain"
)

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	// FindByOwner returns domain.ErrCartNotFound when the owner has no cart.
	FindByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
	// Save replaces the owner's cart document, creating it if needed.
	Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, products []domain.Product) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
}
