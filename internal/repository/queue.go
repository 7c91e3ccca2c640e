package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tillworks/poscore/internal/domain"
)

var ErrQueueEntryNotFound = errors.New("sync queue entry not found")

// DueEntries returns ledger entries eligible for a retry right now, oldest
// first. Entries past the attempt cap are dead-lettered: they stay in the
// ledger for manual resync but are never drained automatically.
func (r *Repository) DueEntries(ctx context.Context, now time.Time, maxAttempts, limit int) ([]*domain.QueueEntry, error) {
	query := `SELECT order_id, attempt_count, last_attempt_at, next_eligible_at, last_error
	          FROM sync_queue
	          WHERE next_eligible_at <= ? AND attempt_count < ?
	          ORDER BY next_eligible_at ASC
	          LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, toNanos(now), maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query due sync entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.QueueEntry
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// GetQueueEntry loads the ledger row for one order.
func (r *Repository) GetQueueEntry(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	query := `SELECT order_id, attempt_count, last_attempt_at, next_eligible_at, last_error
	          FROM sync_queue WHERE order_id = ?`
	entry, err := scanQueueEntry(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordSyncFailure bumps the ledger entry and marks the order's sync axis
// failed, in one transaction. The entry is upserted so a manual sync of an
// order whose ledger row went missing still leaves a durable retry record.
func (r *Repository) RecordSyncFailure(ctx context.Context, orderID, syncError string, attemptAt, nextEligibleAt time.Time) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		upsert := `INSERT INTO sync_queue (order_id, attempt_count, last_attempt_at, next_eligible_at, last_error)
		           VALUES (?, 1, ?, ?, ?)
		           ON CONFLICT (order_id) DO UPDATE SET
		               attempt_count = attempt_count + 1,
		               last_attempt_at = excluded.last_attempt_at,
		               next_eligible_at = excluded.next_eligible_at,
		               last_error = excluded.last_error`
		if _, err := tx.ExecContext(ctx, upsert, orderID, toNanos(attemptAt), toNanos(nextEligibleAt), syncError); err != nil {
			return fmt.Errorf("record sync failure: %w", err)
		}

		update := `UPDATE orders SET sync_status = 'failed', sync_error = ?, updated_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, update, syncError, toNanos(attemptAt), orderID); err != nil {
			return fmt.Errorf("mark order sync failed: %w", err)
		}
		return nil
	})
}

// MarkOrderSynced records a successful reconciliation: the order gets its
// platform id and synced stamps, and the ledger entry is removed in the
// same transaction, so the queue can never point at an already-synced order.
func (r *Repository) MarkOrderSynced(ctx context.Context, orderID, platformOrderID string, syncedAt time.Time) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `UPDATE orders
		          SET status = 'synced', sync_status = 'synced', sync_error = '',
		              platform_order_id = ?, synced_at = ?, updated_at = ?
		          WHERE id = ? AND status IN ('paid', 'synced')`
		res, err := tx.ExecContext(ctx, query, platformOrderID, toNanos(syncedAt), toNanos(syncedAt), orderID)
		if err != nil {
			return fmt.Errorf("mark order synced: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("mark order synced: %w", err)
		}
		if affected == 0 {
			return domain.ErrInvalidStateTransition
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_queue WHERE order_id = ?`, orderID); err != nil {
			return fmt.Errorf("remove sync entry: %w", err)
		}
		return nil
	})
}

// ResetQueueEntry clears the backoff clock and attempt count for a
// dead-lettered order so a manual resync starts fresh.
func (r *Repository) ResetQueueEntry(ctx context.Context, orderID string) error {
	query := `UPDATE sync_queue
	          SET attempt_count = 0, next_eligible_at = ?, last_error = ''
	          WHERE order_id = ?`
	res, err := r.db.ExecContext(ctx, query, toNanos(time.Now()), orderID)
	if err != nil {
		return fmt.Errorf("reset sync entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset sync entry: %w", err)
	}
	if affected == 0 {
		return ErrQueueEntryNotFound
	}
	return nil
}

// QueueCounts reports ledger size, entries never attempted, and entries in
// retry, straight from the durable ledger.
func (r *Repository) QueueCounts(ctx context.Context) (length, pending, retrying int, err error) {
	query := `SELECT
	              COUNT(*),
	              COALESCE(SUM(CASE WHEN attempt_count = 0 THEN 1 ELSE 0 END), 0),
	              COALESCE(SUM(CASE WHEN attempt_count > 0 THEN 1 ELSE 0 END), 0)
	          FROM sync_queue`
	if err = r.db.QueryRowContext(ctx, query).Scan(&length, &pending, &retrying); err != nil {
		return 0, 0, 0, fmt.Errorf("query queue counts: %w", err)
	}
	return length, pending, retrying, nil
}

func scanQueueEntry(row rowScanner) (*domain.QueueEntry, error) {
	entry := &domain.QueueEntry{}
	var lastAttemptAt sql.NullInt64
	var nextEligibleAt int64
	err := row.Scan(
		&entry.OrderID,
		&entry.AttemptCount,
		&lastAttemptAt,
		&nextEligibleAt,
		&entry.LastError,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan sync entry: %w", err)
	}

	entry.LastAttemptAt = fromNullNanos(lastAttemptAt)
	entry.NextEligibleAt = fromNanos(nextEligibleAt)
	return entry, nil
}
