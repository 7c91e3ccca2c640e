package service

import (
	"context"
	"time"

	"github.com/tillworks/poscore/internal/domain"
)

// MockBasketStore implements repository.BasketStore over an in-memory basket.
type MockBasketStore struct {
	Basket    *domain.Basket
	GetErr    error
	MutateErr error
}

func NewMockBasketStore() *MockBasketStore {
	now := time.Now()
	return &MockBasketStore{
		Basket: &domain.Basket{
			ID:        "basket-1",
			Items:     []domain.BasketItem{},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (m *MockBasketStore) GetBasket(_ context.Context) (*domain.Basket, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Basket, nil
}

func (m *MockBasketStore) MutateBasket(_ context.Context, fn func(*domain.Basket) error) (*domain.Basket, error) {
	if m.MutateErr != nil {
		return nil, m.MutateErr
	}
	// mirror the real store: mutate, recompute, bump updated_at
	copied := *m.Basket
	copied.Items = append([]domain.BasketItem(nil), m.Basket.Items...)
	if err := fn(&copied); err != nil {
		return nil, err
	}
	copied.Recompute()
	copied.UpdatedAt = time.Now()
	m.Basket = &copied
	return m.Basket, nil
}

// MockOrderStore implements repository.OrderStore for lifecycle tests.
type MockOrderStore struct {
	Orders       map[string]*domain.LocalOrder
	CreateErr    error
	CreatedOrder *domain.LocalOrder

	CompletePaymentCalls int
	FailPaymentReason    string
	StatusUpdates        []domain.OrderStatus
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{Orders: map[string]*domain.LocalOrder{}}
}

func (m *MockOrderStore) CreateOrderFromBasket(_ context.Context, order *domain.LocalOrder) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.CreatedOrder = order
	m.Orders[order.ID] = order
	return nil
}

func (m *MockOrderStore) GetOrder(_ context.Context, id string) (*domain.LocalOrder, error) {
	order, ok := m.Orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (m *MockOrderStore) ListOrders(_ context.Context, status *domain.OrderStatus) ([]*domain.LocalOrder, error) {
	var orders []*domain.LocalOrder
	for _, o := range m.Orders {
		if status == nil || o.Status == *status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *MockOrderStore) ListUnsyncedOrders(_ context.Context) ([]*domain.LocalOrder, error) {
	var orders []*domain.LocalOrder
	for _, o := range m.Orders {
		if o.NeedsSync() {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *MockOrderStore) UpdateOrderStatus(_ context.Context, id string, from, to domain.OrderStatus) error {
	order, ok := m.Orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != from {
		return domain.ErrInvalidStateTransition
	}
	order.Status = to
	m.StatusUpdates = append(m.StatusUpdates, to)
	return nil
}

func (m *MockOrderStore) CompletePayment(_ context.Context, id, method, transactionID string, paidAt time.Time) error {
	order, ok := m.Orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusProcessing {
		return domain.ErrInvalidStateTransition
	}
	m.CompletePaymentCalls++
	order.Status = domain.OrderStatusPaid
	order.PaymentMethod = method
	order.PaymentTransactionID = transactionID
	order.PaidAt = &paidAt
	return nil
}

func (m *MockOrderStore) FailPayment(_ context.Context, id, reason string) error {
	order, ok := m.Orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusProcessing {
		return domain.ErrInvalidStateTransition
	}
	order.Status = domain.OrderStatusFailed
	m.FailPaymentReason = reason
	return nil
}
