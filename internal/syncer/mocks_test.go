package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/tillworks/poscore/internal/domain"
	"github.com/tillworks/poscore/internal/repository"
)

// MockSyncStore implements repository.SyncStore over in-memory maps.
type MockSyncStore struct {
	mu      sync.Mutex
	Orders  map[string]*domain.LocalOrder
	Entries map[string]*domain.QueueEntry

	FailureRecords []string
	ResetOrderIDs  []string
}

func NewMockSyncStore() *MockSyncStore {
	return &MockSyncStore{
		Orders:  map[string]*domain.LocalOrder{},
		Entries: map[string]*domain.QueueEntry{},
	}
}

func (m *MockSyncStore) AddPaidOrder(id string) *domain.LocalOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := &domain.LocalOrder{
		ID:         id,
		Status:     domain.OrderStatusPaid,
		SyncStatus: domain.SyncStatusPending,
	}
	m.Orders[id] = order
	m.Entries[id] = &domain.QueueEntry{OrderID: id}
	return order
}

func (m *MockSyncStore) GetOrder(_ context.Context, id string) (*domain.LocalOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *MockSyncStore) DueEntries(_ context.Context, now time.Time, maxAttempts, limit int) ([]*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*domain.QueueEntry
	for _, entry := range m.Entries {
		if len(due) >= limit {
			break
		}
		if !entry.NextEligibleAt.After(now) && entry.AttemptCount < maxAttempts {
			copied := *entry
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (m *MockSyncStore) GetQueueEntry(_ context.Context, orderID string) (*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.Entries[orderID]
	if !ok {
		return nil, repository.ErrQueueEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (m *MockSyncStore) RecordSyncFailure(_ context.Context, orderID, syncError string, attemptAt, nextEligibleAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.Entries[orderID]
	if !ok {
		entry = &domain.QueueEntry{OrderID: orderID}
		m.Entries[orderID] = entry
	}
	entry.AttemptCount++
	entry.LastAttemptAt = &attemptAt
	entry.NextEligibleAt = nextEligibleAt
	entry.LastError = syncError

	if order, ok := m.Orders[orderID]; ok {
		order.SyncStatus = domain.SyncStatusFailed
		order.SyncError = syncError
	}
	m.FailureRecords = append(m.FailureRecords, orderID)
	return nil
}

func (m *MockSyncStore) MarkOrderSynced(_ context.Context, orderID, platformOrderID string, syncedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = domain.OrderStatusSynced
	order.SyncStatus = domain.SyncStatusSynced
	order.SyncError = ""
	order.PlatformOrderID = platformOrderID
	order.SyncedAt = &syncedAt
	delete(m.Entries, orderID)
	return nil
}

func (m *MockSyncStore) ResetQueueEntry(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.Entries[orderID]
	if !ok {
		return repository.ErrQueueEntryNotFound
	}
	entry.AttemptCount = 0
	entry.NextEligibleAt = time.Now()
	entry.LastError = ""
	m.ResetOrderIDs = append(m.ResetOrderIDs, orderID)
	return nil
}

func (m *MockSyncStore) QueueCounts(_ context.Context) (int, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending, retrying int
	for _, entry := range m.Entries {
		if entry.AttemptCount == 0 {
			pending++
		} else {
			retrying++
		}
	}
	return len(m.Entries), pending, retrying, nil
}

// MockAdapter counts submissions and can fail a set number of times per order.
type MockAdapter struct {
	mu           sync.Mutex
	Calls        map[string]int
	FailuresLeft map[string]int
	Err          error
	Delay        time.Duration
	PlatformIDs  map[string]string
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Calls:        map[string]int{},
		FailuresLeft: map[string]int{},
		PlatformIDs:  map[string]string{},
	}
}

func (a *MockAdapter) SubmitOrder(ctx context.Context, order *domain.LocalOrder) (string, error) {
	a.mu.Lock()
	a.Calls[order.ID]++
	failuresLeft := a.FailuresLeft[order.ID]
	if failuresLeft > 0 {
		a.FailuresLeft[order.ID]--
	}
	delay := a.Delay
	err := a.Err
	a.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if failuresLeft > 0 {
		return "", errSimulatedNetwork
	}
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := "platform-" + order.ID
	a.PlatformIDs[order.ID] = id
	return id, nil
}

func (a *MockAdapter) CallCount(orderID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Calls[orderID]
}
