package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/tillworks/poscore/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrMalformedBasket = errors.New("malformed basket items payload")

// BasketStore is the transactional surface the basket manager needs.
type BasketStore interface {
	GetBasket(ctx context.Context) (*domain.Basket, error)
	MutateBasket(ctx context.Context, fn func(*domain.Basket) error) (*domain.Basket, error)
}

// OrderStore is the transactional surface the order lifecycle engine needs.
type OrderStore interface {
	CreateOrderFromBasket(ctx context.Context, order *domain.LocalOrder) error
	GetOrder(ctx context.Context, id string) (*domain.LocalOrder, error)
	ListOrders(ctx context.Context, status *domain.OrderStatus) ([]*domain.LocalOrder, error)
	ListUnsyncedOrders(ctx context.Context) ([]*domain.LocalOrder, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
	CompletePayment(ctx context.Context, id, method, transactionID string, paidAt time.Time) error
	FailPayment(ctx context.Context, id, reason string) error
}

// SyncStore is the surface the sync queue engine needs.
type SyncStore interface {
	GetOrder(ctx context.Context, id string) (*domain.LocalOrder, error)
	DueEntries(ctx context.Context, now time.Time, maxAttempts, limit int) ([]*domain.QueueEntry, error)
	GetQueueEntry(ctx context.Context, orderID string) (*domain.QueueEntry, error)
	RecordSyncFailure(ctx context.Context, orderID, syncError string, attemptAt, nextEligibleAt time.Time) error
	MarkOrderSynced(ctx context.Context, orderID, platformOrderID string, syncedAt time.Time) error
	ResetQueueEntry(ctx context.Context, orderID string) error
	QueueCounts(ctx context.Context) (length, pending, retrying int, err error)
}

// Repository is the single source of truth. Every multi-step operation runs
// inside one SQLite transaction so a crash can never leave basket, order and
// ledger state disagreeing with each other.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection serializes
	// concurrent callers through the database instead of failing with
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &Repository{db: db}, nil
}

// RunMigrations brings the schema up to the version this binary expects.
// A failure here is fatal for the caller: the app must not run against an
// ambiguous schema. Re-running against a current schema is a no-op.
func (r *Repository) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// SchemaVersion returns the currently stamped migration version.
func (r *Repository) SchemaVersion(ctx context.Context) (uint, error) {
	var version uint
	err := r.db.QueryRowContext(ctx, `SELECT version FROM schema_migrations LIMIT 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// withTx runs fn inside a transaction, rolling back on any error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Timestamps are stored as integer unix nanoseconds so they round-trip
// exactly regardless of driver text formats.

func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n)
}

func toNullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64)
	return &t
}
