package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tillworks/poscore/internal/domain"
	"github.com/tillworks/poscore/internal/platform"
	"github.com/tillworks/poscore/internal/repository"
)

const drainBatchSize = 100

// Options bound the engine's retry and concurrency behaviour.
type Options struct {
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	MaxAttempts   int
	Workers       int
	SubmitTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		BaseDelay:     2 * time.Second,
		MaxDelay:      5 * time.Minute,
		MaxAttempts:   8,
		Workers:       4,
		SubmitTimeout: 10 * time.Second,
	}
}

// Engine reconciles paid orders with the remote platform. The ledger in the
// store is the only queue state; the engine itself holds nothing durable, so
// retries survive process restarts.
type Engine struct {
	store      repository.SyncStore
	adapter    platform.Adapter
	logger     *zap.Logger
	opts       Options
	sfg        singleflight.Group
	processing atomic.Bool
}

func NewEngine(store repository.SyncStore, adapter platform.Adapter, logger *zap.Logger, opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{
		store:   store,
		adapter: adapter,
		logger:  logger,
		opts:    opts,
	}
}

// SyncOrder reconciles a single order with the platform. Concurrent calls for
// the same order collapse into one submission via singleflight, so a slow
// retry and a fresh manual sync can never double-submit. Calling it on an
// already-synced order is an immediate success that never touches the
// adapter.
func (e *Engine) SyncOrder(ctx context.Context, orderID string) error {
	_, err, _ := e.sfg.Do(orderID, func() (interface{}, error) {
		return nil, e.syncOrder(ctx, orderID)
	})
	return err
}

func (e *Engine) syncOrder(ctx context.Context, orderID string) error {
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.SyncStatus == domain.SyncStatusSynced {
		return nil
	}
	if order.Status != domain.OrderStatusPaid {
		return fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotPaid, orderID, order.Status)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.opts.SubmitTimeout)
	platformOrderID, submitErr := e.adapter.SubmitOrder(callCtx, order)
	cancel()

	now := time.Now()
	if submitErr != nil {
		// If the caller cancelled mid-call the remote outcome is unknown.
		// Leave the order failed so it is re-attempted; the adapter is
		// idempotent per order id, so a re-submit of an order that did
		// land is safe.
		msg := submitErr.Error()
		if errors.Is(ctx.Err(), context.Canceled) {
			msg = "cancelled: outcome unknown"
		}
		return e.recordFailure(orderID, msg, now)
	}

	// The submit may have succeeded right before a cancellation; record the
	// result regardless of the caller's context so the ledger stays true.
	recordCtx, cancelRecord := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelRecord()
	if err := e.store.MarkOrderSynced(recordCtx, orderID, platformOrderID, now); err != nil {
		return fmt.Errorf("record sync success for order %s: %w", orderID, err)
	}

	e.logger.Info("order synced",
		zap.String("order_id", orderID),
		zap.String("platform_order_id", platformOrderID))
	return nil
}

func (e *Engine) recordFailure(orderID, msg string, attemptAt time.Time) error {
	attempts := 1
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if entry, err := e.store.GetQueueEntry(recordCtx, orderID); err == nil {
		attempts = entry.AttemptCount + 1
	}
	nextEligibleAt := attemptAt.Add(e.backoff(attempts))

	if err := e.store.RecordSyncFailure(recordCtx, orderID, msg, attemptAt, nextEligibleAt); err != nil {
		return fmt.Errorf("record sync failure for order %s: %w", orderID, err)
	}

	e.logger.Warn("order sync failed",
		zap.String("order_id", orderID),
		zap.String("sync_error", msg),
		zap.Int("attempt", attempts),
		zap.Time("next_eligible_at", nextEligibleAt))
	return fmt.Errorf("sync order %s: %s", orderID, msg)
}

// backoff is exponential in the attempt count, capped at MaxDelay.
func (e *Engine) backoff(attempts int) time.Duration {
	delay := e.opts.BaseDelay
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= e.opts.MaxDelay {
			return e.opts.MaxDelay
		}
	}
	return delay
}

// SyncAllPendingOrders drains every ledger entry that is eligible right now.
// Independent orders run concurrently up to the worker bound; the same order
// is never processed twice at once. Per-order failures are aggregated into
// the result, never raised.
func (e *Engine) SyncAllPendingOrders(ctx context.Context) domain.SyncResult {
	e.processing.Store(true)
	defer e.processing.Store(false)

	var result domain.SyncResult

	entries, err := e.store.DueEntries(ctx, time.Now(), e.opts.MaxAttempts, drainBatchSize)
	if err != nil {
		e.logger.Error("failed to fetch due sync entries", zap.Error(err))
		result.Errors = append(result.Errors, domain.SyncIssue{Error: err.Error()})
		return result
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.opts.Workers)

	for _, entry := range entries {
		orderID := entry.OrderID
		g.Go(func() error {
			err := e.SyncOrder(ctx, orderID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, domain.SyncIssue{
					OrderID: orderID,
					Error:   err.Error(),
				})
			} else {
				result.Synced++
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// ResyncOrder resets the backoff clock for a dead-lettered order and retries
// it immediately. This is the manual path for entries past the attempt cap.
func (e *Engine) ResyncOrder(ctx context.Context, orderID string) error {
	if err := e.store.ResetQueueEntry(ctx, orderID); err != nil {
		return err
	}
	return e.SyncOrder(ctx, orderID)
}

// QueueStatus reports the ledger state plus whether a drain is in flight.
func (e *Engine) QueueStatus(ctx context.Context) (*domain.QueueStatus, error) {
	length, pending, retrying, err := e.store.QueueCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.QueueStatus{
		Length:           length,
		IsProcessing:     e.processing.Load(),
		PendingRequests:  pending,
		RetryingRequests: retrying,
	}, nil
}

// Run drains the queue on a fixed tick until the context is cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			result := e.SyncAllPendingOrders(ctx)
			if result.Synced > 0 || result.Failed > 0 {
				e.logger.Info("sync drain finished",
					zap.Int("synced", result.Synced),
					zap.Int("failed", result.Failed))
			}
		case <-ctx.Done():
			return
		}
	}
}
