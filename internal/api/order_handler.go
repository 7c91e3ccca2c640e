package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tillworks/poscore/internal/domain"
)

type OrderHandler struct {
	orders OrderManager
	logger *zap.Logger
}

func NewOrderHandler(orders OrderManager, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

type startCheckoutRequest struct {
	Platform    string `json:"platform,omitempty"`
	CashierID   string `json:"cashier_id,omitempty"`
	CashierName string `json:"cashier_name,omitempty"`
}

// POST /api/v1/checkout
func (h *OrderHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req startCheckoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	order, err := h.orders.StartCheckout(r.Context(), req.Platform, req.CashierID, req.CashierName)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// POST /api/v1/orders/{order_id}/processing
func (h *OrderHandler) MarkPaymentProcessing(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if err := h.orders.MarkPaymentProcessing(r.Context(), orderID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "status": "processing"})
}

type paymentOutcomeRequest struct {
	Success       bool   `json:"success"`
	PaymentMethod string `json:"payment_method,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// POST /api/v1/orders/{order_id}/payment
//
// The register charges the terminal itself and reports the outcome here.
func (h *OrderHandler) RecordPaymentOutcome(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	var req paymentOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var result *domain.CheckoutResult
	var err error
	if req.Success {
		if req.PaymentMethod == "" {
			respondError(w, http.StatusBadRequest, "invalid_request", "payment_method is required on success")
			return
		}
		result, err = h.orders.CompletePayment(r.Context(), orderID, req.PaymentMethod, req.TransactionID)
	} else {
		if req.Error == "" {
			respondError(w, http.StatusBadRequest, "invalid_request", "error is required on failure")
			return
		}
		result, err = h.orders.RecordPaymentFailure(r.Context(), orderID, req.Error)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// POST /api/v1/orders/{order_id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if err := h.orders.CancelOrder(r.Context(), orderID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "status": "cancelled"})
}

// GET /api/v1/orders?status=paid
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		switch status {
		case domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusPaid,
			domain.OrderStatusSynced, domain.OrderStatusFailed, domain.OrderStatusCancelled:
			filter = &status
		default:
			respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status: "+raw)
			return
		}
	}

	orders, err := h.orders.GetLocalOrders(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.LocalOrder{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/unsynced
func (h *OrderHandler) ListUnsyncedOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetUnsyncedOrders(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.LocalOrder{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetLocalOrder(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
