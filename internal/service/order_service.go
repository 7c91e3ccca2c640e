package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tillworks/poscore/internal/domain"
	"github.com/tillworks/poscore/internal/repository"
)

// OrderService drives the basket -> order lifecycle:
//
//	pending -> processing -> paid -> synced
//	pending|processing -> cancelled
//	pending|processing -> failed (payment declined)
//
// Payment capture itself happens outside this core; callers charge the
// terminal first and then report the outcome here.
type OrderService struct {
	store  repository.OrderStore
	logger *zap.Logger
}

func NewOrderService(store repository.OrderStore, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:  store,
		logger: logger,
	}
}

// StartCheckout snapshots the active basket into a new pending order. The
// basket stays untouched until payment completes, so an abandoned checkout
// never loses the cart. Fails with domain.ErrEmptyBasket on an empty basket.
func (s *OrderService) StartCheckout(ctx context.Context, platform, cashierID, cashierName string) (*domain.LocalOrder, error) {
	now := time.Now()
	order := &domain.LocalOrder{
		ID:          uuid.New().String(),
		Platform:    platform,
		CashierID:   cashierID,
		CashierName: cashierName,
		Status:      domain.OrderStatusPending,
		SyncStatus:  domain.SyncStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateOrderFromBasket(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("checkout started",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// MarkPaymentProcessing moves a pending order to processing. Calling it again
// while already processing is a no-op success.
func (s *OrderService) MarkPaymentProcessing(ctx context.Context, orderID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == domain.OrderStatusProcessing {
		return nil
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusProcessing) {
		return fmt.Errorf("%w: %s -> processing", domain.ErrInvalidStateTransition, order.Status)
	}

	return s.store.UpdateOrderStatus(ctx, orderID, order.Status, domain.OrderStatusProcessing)
}

// CompletePayment records a successful charge: the order becomes paid, the
// basket is cleared and a sync ledger entry is enqueued, all in one store
// transaction. A crash between "paid" and "enqueued" cannot happen.
func (s *OrderService) CompletePayment(ctx context.Context, orderID, paymentMethod, transactionID string) (*domain.CheckoutResult, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusPaid) {
		return nil, fmt.Errorf("%w: %s -> paid", domain.ErrInvalidStateTransition, order.Status)
	}

	if err := s.store.CompletePayment(ctx, orderID, paymentMethod, transactionID, time.Now()); err != nil {
		return nil, err
	}

	s.logger.Info("payment completed",
		zap.String("order_id", orderID),
		zap.String("payment_method", paymentMethod),
		zap.Int64("total", order.Total))

	return &domain.CheckoutResult{
		Success: true,
		OrderID: orderID,
	}, nil
}

// RecordPaymentFailure marks the order failed with the charge failure reason.
// The basket is preserved so the sale can be retried without re-entering
// items.
func (s *OrderService) RecordPaymentFailure(ctx context.Context, orderID, reason string) (*domain.CheckoutResult, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusFailed) {
		return nil, fmt.Errorf("%w: %s -> failed", domain.ErrInvalidStateTransition, order.Status)
	}

	if err := s.store.FailPayment(ctx, orderID, reason); err != nil {
		return nil, err
	}

	s.logger.Warn("payment failed",
		zap.String("order_id", orderID),
		zap.String("reason", reason))

	return &domain.CheckoutResult{
		Success: false,
		OrderID: orderID,
		Error:   reason,
	}, nil
}

// CancelOrder cancels a still-pending or processing order. Paid orders can
// only be reversed through a refund flow, never by cancellation.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return fmt.Errorf("%w: %s -> cancelled", domain.ErrInvalidStateTransition, order.Status)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, order.Status, domain.OrderStatusCancelled); err != nil {
		return err
	}

	s.logger.Info("order cancelled", zap.String("order_id", orderID))
	return nil
}

func (s *OrderService) GetLocalOrder(ctx context.Context, orderID string) (*domain.LocalOrder, error) {
	return s.store.GetOrder(ctx, orderID)
}

func (s *OrderService) GetLocalOrders(ctx context.Context, status *domain.OrderStatus) ([]*domain.LocalOrder, error) {
	return s.store.ListOrders(ctx, status)
}

// GetUnsyncedOrders returns paid orders whose reconciliation is still pending
// or failed.
func (s *OrderService) GetUnsyncedOrders(ctx context.Context) ([]*domain.LocalOrder, error) {
	return s.store.ListUnsyncedOrders(ctx)
}
