package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shoppyglobe/backend/internal/cart"
	"github.com/shoppyglobe/backend/internal/domain"
	"go.uber.org/zap"
)

type CartService interface {
	GetCart(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, ownerID string) (*domain.Cart, error)
}

type CartHandler struct {
	carts  CartService
	logger *zap.Logger
}

func NewCartHandler(carts CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Cart    *domain.Cart `json:"cart"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication", "")
		return
	}

	c, err := h.carts.GetCart(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponse{Success: true, Cart: c})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication", "")
		return
	}

	var req AddItemRequestDTO
	if err := readJSON(w, r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	quantity := cart.DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	c, err := h.carts.AddItem(r.Context(), user.ID, req.ProductID, quantity)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponse{Success: true, Cart: c})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication", "")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := readJSON(w, r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	c, err := h.carts.UpdateItemQuantity(r.Context(), user.ID, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponse{Success: true, Cart: c})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication", "")
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), user.ID, chi.URLParam(r, "itemId"))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponse{Success: true, Cart: c})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication", "")
		return
	}

	c, err := h.carts.ClearCart(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponse{Success: true, Message: "Cart cleared", Cart: c})
}
