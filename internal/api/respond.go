package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tillworks/poscore/internal/domain"
	"github.com/tillworks/poscore/internal/repository"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// respondDomainError maps core errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, repository.ErrQueueEntryNotFound):
		respondError(w, http.StatusNotFound, "queue_entry_not_found", err.Error())
	case errors.Is(err, domain.ErrEmptyBasket):
		respondError(w, http.StatusBadRequest, "empty_basket", err.Error())
	case errors.Is(err, domain.ErrInvalidDiscountCode):
		respondError(w, http.StatusBadRequest, "invalid_discount_code", err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		respondError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, domain.ErrOrderNotPaid):
		respondError(w, http.StatusConflict, "order_not_paid", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
