package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/shoppyglobe/backend/internal/service"
	"go.uber.org/zap"
)

type ProductService interface {
	List(ctx context.Context, f domain.ProductFilter) (service.ProductPage, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductHandler struct {
	products ProductService
	logger   *zap.Logger
}

func NewProductHandler(products ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

type ProductRequestDTO struct {
	Title              string           `json:"title" validate:"required,max=100"`
	Description        string           `json:"description" validate:"required,max=1000"`
	Price              *decimal.Decimal `json:"price" validate:"required"`
	DiscountPercentage float64          `json:"discountPercentage" validate:"gte=0,lte=99"`
	Rating             float64          `json:"rating" validate:"gte=0,lte=5"`
	Stock              *int             `json:"stock" validate:"required,gte=0"`
	Brand              string           `json:"brand" validate:"required"`
	Category           string           `json:"category" validate:"required,category"`
	Thumbnail          string           `json:"thumbnail" validate:"required,url"`
	Images             []string         `json:"images" validate:"omitempty,dive,url"`
}

func (d ProductRequestDTO) toDomain() *domain.Product {
	return &domain.Product{
		Title:              d.Title,
		Description:        d.Description,
		Price:              *d.Price,
		DiscountPercentage: d.DiscountPercentage,
		Rating:             d.Rating,
		Stock:              *d.Stock,
		Brand:              d.Brand,
		Category:           d.Category,
		Thumbnail:          d.Thumbnail,
		Images:             d.Images,
	}
}

type PageLinks struct {
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

type ProductListResponse struct {
	Success     bool             `json:"success"`
	Count       int              `json:"count"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Links       PageLinks        `json:"links"`
	Products    []domain.Product `json:"products"`
}

type ProductResponse struct {
	Success bool            `json:"success"`
	Product *domain.Product `json:"product"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	page, err := h.products.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	resp := ProductListResponse{
		Success:     true,
		Count:       len(page.Products),
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.Page,
		Products:    page.Products,
	}
	if page.HasPrev() {
		resp.Links.Prev = pageLink(r.URL, page.Page-1)
	}
	if page.HasNext() {
		resp.Links.Next = pageLink(r.URL, page.Page+1)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := readProduct(w, r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	p, err := h.products.Create(r.Context(), req.toDomain())
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := readProduct(w, r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product removed"})
}

func readProduct(w http.ResponseWriter, r *http.Request, req *ProductRequestDTO) error {
	if err := readJSON(w, r, req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("price must be a positive number")
	}
	return nil
}

// parseProductFilter reads listing query parameters. Unparsable page and
// limit values fall back to their defaults; bad prices are rejected.
func parseProductFilter(q url.Values) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		Category: q.Get("category"),
		InStock:  q.Get("inStock") == "true",
		Search:   q.Get("search"),
		Page:     atoiOr(q.Get("page"), service.DefaultPage),
		Limit:    atoiOr(q.Get("limit"), service.DefaultLimit),
	}

	var err error
	if f.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(q url.Values, key string) (*decimal.Decimal, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &d, nil
}

func atoiOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func pageLink(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}
