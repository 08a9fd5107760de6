package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiankay999/Kay-Birks-website/internal/cart"
	"github.com/tiankay999/Kay-Birks-website/internal/catalog"
	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

type CartHandler struct {
	store   *cart.Store
	catalog catalog.RepoInterface
	timeout time.Duration
}

func NewCartHandler(store *cart.Store, catalog catalog.RepoInterface, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID  int64  `json:"productId"`
	Color      string `json:"color"`
	Customized bool   `json:"customized"`
}

type ChangeQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type ApplyPromoRequestDTO struct {
	Code string `json:"code"`
}

type CartResponseDTO struct {
	Items  []domain.LineItem `json:"items"`
	Count  int               `json:"count"`
	Totals domain.Totals     `json:"totals"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		log.Printf("catalog lookup failed [%s]: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.store.AddItem(ctx, *product, req.Color, req.Customized)
	respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")

	var req ChangeQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Delta != 1 && req.Delta != -1 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be +1 or -1")
		return
	}

	h.store.ChangeQuantity(ctx, itemID, req.Delta)
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	h.store.RemoveItem(ctx, chi.URLParam(r, "item_id"))
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req ApplyPromoRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := h.store.ApplyPromoCode(req.Code); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_promo_code", "Invalid promo code")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) cartResponse() CartResponseDTO {
	return CartResponseDTO{
		Items:  h.store.Items(),
		Count:  h.store.ItemCount(),
		Totals: h.store.Totals(),
	}
}

func withTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}
