package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SyncHandler struct {
	sync   SyncManager
	logger *zap.Logger
}

func NewSyncHandler(sync SyncManager, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		sync:   sync,
		logger: logger,
	}
}

// POST /api/v1/orders/{order_id}/sync
func (h *SyncHandler) SyncOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if err := h.sync.SyncOrder(r.Context(), orderID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "sync_status": "synced"})
}

// POST /api/v1/orders/{order_id}/resync
//
// Manual path for dead-lettered orders: resets the backoff clock and retries.
func (h *SyncHandler) ResyncOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if err := h.sync.ResyncOrder(r.Context(), orderID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "sync_status": "synced"})
}

// GET /api/v1/sync/status
func (h *SyncHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.sync.QueueStatus(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// POST /api/v1/sync/run
func (h *SyncHandler) RunDrain(w http.ResponseWriter, r *http.Request) {
	result := h.sync.SyncAllPendingOrders(r.Context())
	respondJSON(w, http.StatusOK, result)
}
