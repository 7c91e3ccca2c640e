package api

import (
	"context"

	"github.com/tillworks/poscore/internal/domain"
)

// MockBasketManager implements BasketManager with canned responses.
type MockBasketManager struct {
	Basket *domain.Basket
	Err    error

	AddedItem       *domain.BasketItem
	UpdatedItemID   string
	UpdatedQuantity int
	RemovedItemID   string
	AppliedCode     string
	Cleared         bool
}

func (m *MockBasketManager) reply() (*domain.Basket, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Basket, nil
}

func (m *MockBasketManager) GetBasket(context.Context) (*domain.Basket, error) {
	return m.reply()
}

func (m *MockBasketManager) AddItem(_ context.Context, item domain.BasketItem) (*domain.Basket, error) {
	m.AddedItem = &item
	return m.reply()
}

func (m *MockBasketManager) UpdateItemQuantity(_ context.Context, itemID string, quantity int) (*domain.Basket, error) {
	m.UpdatedItemID = itemID
	m.UpdatedQuantity = quantity
	return m.reply()
}

func (m *MockBasketManager) RemoveItem(_ context.Context, itemID string) (*domain.Basket, error) {
	m.RemovedItemID = itemID
	return m.reply()
}

func (m *MockBasketManager) ClearBasket(context.Context) (*domain.Basket, error) {
	m.Cleared = true
	return m.reply()
}

func (m *MockBasketManager) ApplyDiscount(_ context.Context, code string) (*domain.Basket, error) {
	m.AppliedCode = code
	return m.reply()
}

func (m *MockBasketManager) RemoveDiscount(context.Context) (*domain.Basket, error) {
	return m.reply()
}

func (m *MockBasketManager) SetCustomer(_ context.Context, _, _ string) (*domain.Basket, error) {
	return m.reply()
}

func (m *MockBasketManager) SetNote(_ context.Context, _ string) (*domain.Basket, error) {
	return m.reply()
}

// MockOrderManager implements OrderManager with canned responses.
type MockOrderManager struct {
	Order          *domain.LocalOrder
	Orders         []*domain.LocalOrder
	Result         *domain.CheckoutResult
	Err            error
	CancelledID    string
	ProcessingID   string
	PaymentMethod  string
	FailureReason  string
	ListFilter     *domain.OrderStatus
	UnsyncedCalled bool
}

func (m *MockOrderManager) StartCheckout(_ context.Context, _, _, _ string) (*domain.LocalOrder, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockOrderManager) MarkPaymentProcessing(_ context.Context, orderID string) error {
	m.ProcessingID = orderID
	return m.Err
}

func (m *MockOrderManager) CompletePayment(_ context.Context, _, paymentMethod, _ string) (*domain.CheckoutResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.PaymentMethod = paymentMethod
	return m.Result, nil
}

func (m *MockOrderManager) RecordPaymentFailure(_ context.Context, _, reason string) (*domain.CheckoutResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.FailureReason = reason
	return m.Result, nil
}

func (m *MockOrderManager) CancelOrder(_ context.Context, orderID string) error {
	m.CancelledID = orderID
	return m.Err
}

func (m *MockOrderManager) GetLocalOrder(_ context.Context, _ string) (*domain.LocalOrder, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockOrderManager) GetLocalOrders(_ context.Context, status *domain.OrderStatus) ([]*domain.LocalOrder, error) {
	m.ListFilter = status
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Orders, nil
}

func (m *MockOrderManager) GetUnsyncedOrders(context.Context) ([]*domain.LocalOrder, error) {
	m.UnsyncedCalled = true
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Orders, nil
}

// MockSyncManager implements SyncManager with canned responses.
type MockSyncManager struct {
	Status     *domain.QueueStatus
	Result     domain.SyncResult
	Err        error
	SyncedID   string
	ResyncedID string
}

func (m *MockSyncManager) SyncOrder(_ context.Context, orderID string) error {
	m.SyncedID = orderID
	return m.Err
}

func (m *MockSyncManager) SyncAllPendingOrders(context.Context) domain.SyncResult {
	return m.Result
}

func (m *MockSyncManager) ResyncOrder(_ context.Context, orderID string) error {
	m.ResyncedID = orderID
	return m.Err
}

func (m *MockSyncManager) QueueStatus(context.Context) (*domain.QueueStatus, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Status, nil
}
