package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tillworks/poscore/internal/domain"
)

// BasketManager is the basket surface the API exposes upward.
type BasketManager interface {
	GetBasket(ctx context.Context) (*domain.Basket, error)
	AddItem(ctx context.Context, item domain.BasketItem) (*domain.Basket, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.Basket, error)
	RemoveItem(ctx context.Context, itemID string) (*domain.Basket, error)
	ClearBasket(ctx context.Context) (*domain.Basket, error)
	ApplyDiscount(ctx context.Context, code string) (*domain.Basket, error)
	RemoveDiscount(ctx context.Context) (*domain.Basket, error)
	SetCustomer(ctx context.Context, email, name string) (*domain.Basket, error)
	SetNote(ctx context.Context, note string) (*domain.Basket, error)
}

// OrderManager is the order lifecycle surface the API exposes upward.
type OrderManager interface {
	StartCheckout(ctx context.Context, platform, cashierID, cashierName string) (*domain.LocalOrder, error)
	MarkPaymentProcessing(ctx context.Context, orderID string) error
	CompletePayment(ctx context.Context, orderID, paymentMethod, transactionID string) (*domain.CheckoutResult, error)
	RecordPaymentFailure(ctx context.Context, orderID, reason string) (*domain.CheckoutResult, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetLocalOrder(ctx context.Context, orderID string) (*domain.LocalOrder, error)
	GetLocalOrders(ctx context.Context, status *domain.OrderStatus) ([]*domain.LocalOrder, error)
	GetUnsyncedOrders(ctx context.Context) ([]*domain.LocalOrder, error)
}

// SyncManager is the sync queue surface the API exposes upward.
type SyncManager interface {
	SyncOrder(ctx context.Context, orderID string) error
	SyncAllPendingOrders(ctx context.Context) domain.SyncResult
	ResyncOrder(ctx context.Context, orderID string) error
	QueueStatus(ctx context.Context) (*domain.QueueStatus, error)
}

// NewRouter wires the local HTTP surface consumed by the register UI.
func NewRouter(baskets BasketManager, orders OrderManager, sync SyncManager, logger *zap.Logger) *chi.Mux {
	basketHandler := NewBasketHandler(baskets, logger)
	orderHandler := NewOrderHandler(orders, logger)
	syncHandler := NewSyncHandler(sync, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/basket", basketHandler.GetBasket)
		r.Delete("/basket", basketHandler.ClearBasket)
		r.Post("/basket/items", basketHandler.AddItem)
		r.Put("/basket/items/{item_id}", basketHandler.UpdateItemQuantity)
		r.Delete("/basket/items/{item_id}", basketHandler.RemoveItem)
		r.Post("/basket/discount", basketHandler.ApplyDiscount)
		r.Delete("/basket/discount", basketHandler.RemoveDiscount)
		r.Put("/basket/customer", basketHandler.SetCustomer)
		r.Put("/basket/note", basketHandler.SetNote)

		r.Post("/checkout", orderHandler.StartCheckout)
		r.Get("/orders", orderHandler.ListOrders)
		r.Get("/orders/unsynced", orderHandler.ListUnsyncedOrders)
		r.Get("/orders/{order_id}", orderHandler.GetOrder)
		r.Post("/orders/{order_id}/processing", orderHandler.MarkPaymentProcessing)
		r.Post("/orders/{order_id}/payment", orderHandler.RecordPaymentOutcome)
		r.Post("/orders/{order_id}/cancel", orderHandler.CancelOrder)
		r.Post("/orders/{order_id}/sync", syncHandler.SyncOrder)
		r.Post("/orders/{order_id}/resync", syncHandler.ResyncOrder)

		r.Get("/sync/status", syncHandler.QueueStatus)
		r.Post("/sync/run", syncHandler.RunDrain)
	})

	return r
}
