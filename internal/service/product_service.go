package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/shoppyglobe/backend/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 30
)

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Products   []domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

func (p ProductPage) HasPrev() bool { return p.Page > 1 }
func (p ProductPage) HasNext() bool { return p.Page < p.TotalPages }

type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) (ProductPage, error) {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return ProductPage{}, fmt.Errorf("%w: minPrice is greater than maxPrice", domain.ErrInvalidArgument)
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return ProductPage{}, domain.Unavailable(err)
	}

	return ProductPage{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

func (s *ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: please provide a search term", domain.ErrInvalidArgument)
	}
	products, err := s.products.Search(ctx, term)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return notFoundOrUnavailable(s.products.GetByID(ctx, id))
}

func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	return notFoundOrUnavailable(s.products.Update(ctx, id, p))
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	_, err := notFoundOrUnavailable(&domain.Product{}, s.products.Delete(ctx, id))
	return err
}

func notFoundOrUnavailable(p *domain.Product, err error) (*domain.Product, error) {
	if err == nil {
		return p, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return nil, domain.Unavailable(err)
}
