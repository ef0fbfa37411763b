// Package seeder loads the product catalog from the DummyJSON API.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shoppyglobe/backend/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultURL = "https://dummyjson.com/products"

	defaultTitle       = "Untitled Product"
	defaultDescription = "No description available"
	defaultBrand       = "Generic Brand"
	defaultCategory    = "uncategorized"
	defaultThumbnail   = "https://via.placeholder.com/150"

	maxResponseBytes = 10 << 20
)

type ProductStore interface {
	DeleteAll(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, products []domain.Product) (int, error)
}

type Seeder struct {
	client  *http.Client
	url     string
	store   ProductStore
	logger  *zap.Logger
	maxBody int64
}

func New(store ProductStore, url string, logger *zap.Logger) *Seeder {
	if url == "" {
		url = DefaultURL
	}
	return &Seeder{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		url:     url,
		store:   store,
		logger:  logger,
		maxBody: maxResponseBytes,
	}
}

type remoteProduct struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// Import replaces the whole catalog with the remote product list.
func (s *Seeder) Import(ctx context.Context) (int, error) {
	s.logger.Info("fetching products", zap.String("url", s.url))
	products, err := s.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cleared existing products", zap.Int64("deleted", deleted))

	n, err := s.store.InsertMany(ctx, products)
	if err != nil {
		return 0, err
	}
	s.logger.Info("products imported", zap.Int("count", n))
	return n, nil
}

func (s *Seeder) Delete(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("products deleted", zap.Int64("deleted", deleted))
	return deleted, nil
}

func (s *Seeder) Fetch(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch products: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Products []remoteProduct `json:"products"`
	}
	// one byte over the cap tells a truncated body apart from a full one
	limited := &io.LimitedReader{R: resp.Body, N: s.maxBody + 1}
	if err := json.NewDecoder(limited).Decode(&body); err != nil {
		if limited.N <= 0 {
			return nil, fmt.Errorf("decode products: response larger than %d bytes", s.maxBody)
		}
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(body.Products))
	for _, rp := range body.Products {
		products = append(products, rp.toDomain())
	}
	return products, nil
}

func (rp remoteProduct) toDomain() domain.Product {
	images := rp.Images
	if images == nil {
		images = []string{}
	}
	return domain.Product{
		Title:              orDefault(rp.Title, defaultTitle),
		Description:        orDefault(rp.Description, defaultDescription),
		Price:              decimal.NewFromFloat(rp.Price),
		DiscountPercentage: rp.DiscountPercentage,
		Rating:             rp.Rating,
		Stock:              rp.Stock,
		Brand:              orDefault(rp.Brand, defaultBrand),
		Category:           orDefault(rp.Category, defaultCategory),
		Thumbnail:          orDefault(rp.Thumbnail, defaultThumbnail),
		Images:             images,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
