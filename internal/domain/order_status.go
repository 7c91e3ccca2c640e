package domain

// OrderStatus describes where an order sits in its business lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusSynced     OrderStatus = "synced"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSynced || s == OrderStatusFailed || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusPaid ||
			next == OrderStatusFailed || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusPaid || next == OrderStatusFailed ||
			next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusSynced
	default:
		return false
	}
}

// SyncStatus tracks reconciliation with the remote platform. It is a separate
// axis from OrderStatus: a paid order may stay unsynced for an arbitrary time.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

func (s SyncStatus) String() string {
	return string(s)
}
