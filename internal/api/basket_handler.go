package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tillworks/poscore/internal/domain"
)

type BasketHandler struct {
	baskets BasketManager
	logger  *zap.Logger
}

func NewBasketHandler(baskets BasketManager, logger *zap.Logger) *BasketHandler {
	return &BasketHandler{
		baskets: baskets,
		logger:  logger,
	}
}

// GET /api/v1/basket
func (h *BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	basket, err := h.baskets.GetBasket(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

// POST /api/v1/basket/items
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.BasketItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if item.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "name is required")
		return
	}
	if item.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}
	if item.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	basket, err := h.baskets.AddItem(r.Context(), item)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, basket)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PUT /api/v1/basket/items/{item_id}
func (h *BasketHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	basket, err := h.baskets.UpdateItemQuantity(r.Context(), itemID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

// DELETE /api/v1/basket/items/{item_id}
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	basket, err := h.baskets.RemoveItem(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

// DELETE /api/v1/basket
func (h *BasketHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	basket, err := h.baskets.ClearBasket(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

type discountRequest struct {
	Code string `json:"code"`
}

// POST /api/v1/basket/discount
func (h *BasketHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	basket, err := h.baskets.ApplyDiscount(r.Context(), req.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

// DELETE /api/v1/basket/discount
func (h *BasketHandler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	basket, err := h.baskets.RemoveDiscount(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

type customerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PUT /api/v1/basket/customer
func (h *BasketHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	basket, err := h.baskets.SetCustomer(r.Context(), req.Email, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}

type noteRequest struct {
	Note string `json:"note"`
}

// PUT /api/v1/basket/note
func (h *BasketHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	basket, err := h.baskets.SetNote(r.Context(), req.Note)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, basket)
}
