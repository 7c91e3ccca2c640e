package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusProcessing))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusFailed))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusSynced))
}

func TestCanTransitionTo_PaidIsFrozen(t *testing.T) {
	// a paid order can only move to synced, never back or to cancelled
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusProcessing))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusFailed))
}

func TestCanTransitionTo_TerminalStatesAreDead(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderStatusSynced, OrderStatusFailed, OrderStatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		for _, next := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusPaid,
			OrderStatusSynced, OrderStatusFailed, OrderStatusCancelled} {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s should be blocked", terminal, next)
		}
	}
}

func TestNeedsSync(t *testing.T) {
	paidPending := &LocalOrder{Status: OrderStatusPaid, SyncStatus: SyncStatusPending}
	assert.True(t, paidPending.NeedsSync())

	paidFailed := &LocalOrder{Status: OrderStatusPaid, SyncStatus: SyncStatusFailed}
	assert.True(t, paidFailed.NeedsSync())

	synced := &LocalOrder{Status: OrderStatusSynced, SyncStatus: SyncStatusSynced}
	assert.False(t, synced.NeedsSync())

	unpaid := &LocalOrder{Status: OrderStatusPending, SyncStatus: SyncStatusPending}
	assert.False(t, unpaid.NeedsSync())
}
