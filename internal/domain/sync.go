package domain

import "time"

// QueueEntry is the ledger row for one order awaiting reconciliation. It is
// created when the order becomes paid and deleted once the sync succeeds.
type QueueEntry struct {
	OrderID        string     `json:"order_id"`
	AttemptCount   int        `json:"attempt_count"`
	LastAttemptAt  *time.Time `json:"last_attempt_at,omitempty"`
	NextEligibleAt time.Time  `json:"next_eligible_at"`
	LastError      string     `json:"last_error,omitempty"`
}

// SyncResult aggregates the outcome of one queue drain.
type SyncResult struct {
	Synced int         `json:"synced"`
	Failed int         `json:"failed"`
	Errors []SyncIssue `json:"errors,omitempty"`
}

// SyncIssue carries enough context for the operator-facing layer to act.
type SyncIssue struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// QueueStatus is a point-in-time view of the sync ledger.
type QueueStatus struct {
	Length           int  `json:"length"`
	IsProcessing     bool `json:"is_processing"`
	PendingRequests  int  `json:"pending_requests"`
	RetryingRequests int  `json:"retrying_requests"`
}
