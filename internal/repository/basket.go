package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillworks/poscore/internal/domain"
)

const basketColumns = `id, items_json, subtotal, tax, total, discount_amount, discount_code,
	customer_email, customer_name, note, created_at, updated_at`

// GetBasket returns the active basket, creating an empty one if none exists.
func (r *Repository) GetBasket(ctx context.Context) (*domain.Basket, error) {
	var basket *domain.Basket
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		b, err := loadOrCreateBasket(ctx, tx)
		if err != nil {
			return err
		}
		basket = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return basket, nil
}

// MutateBasket applies fn to the active basket inside one transaction:
// load, mutate, recompute totals, write back. Concurrent mutations serialize
// through the store, so fn never sees stale totals.
func (r *Repository) MutateBasket(ctx context.Context, fn func(*domain.Basket) error) (*domain.Basket, error) {
	var basket *domain.Basket
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		b, err := loadOrCreateBasket(ctx, tx)
		if err != nil {
			return err
		}

		if err := fn(b); err != nil {
			return err
		}

		b.Recompute()
		b.UpdatedAt = time.Now()

		if err := writeBasket(ctx, tx, b); err != nil {
			return err
		}
		basket = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return basket, nil
}

func loadOrCreateBasket(ctx context.Context, tx *sql.Tx) (*domain.Basket, error) {
	query := `SELECT ` + basketColumns + ` FROM baskets WHERE status = 'active'`

	b := &domain.Basket{}
	var itemsJSON []byte
	var createdAt, updatedAt int64
	err := tx.QueryRowContext(ctx, query).Scan(
		&b.ID,
		&itemsJSON,
		&b.Subtotal,
		&b.Tax,
		&b.Total,
		&b.DiscountAmount,
		&b.DiscountCode,
		&b.CustomerEmail,
		&b.CustomerName,
		&b.Note,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return createBasket(ctx, tx)
	}
	if err != nil {
		return nil, fmt.Errorf("query active basket: %w", err)
	}

	b.CreatedAt = fromNanos(createdAt)
	b.UpdatedAt = fromNanos(updatedAt)

	if err := json.Unmarshal(itemsJSON, &b.Items); err != nil {
		return nil, fmt.Errorf("%w: basket %s: %v", ErrMalformedBasket, b.ID, err)
	}
	if err := b.ValidateItems(); err != nil {
		return nil, fmt.Errorf("%w: basket %s: %v", ErrMalformedBasket, b.ID, err)
	}

	return b, nil
}

func createBasket(ctx context.Context, tx *sql.Tx) (*domain.Basket, error) {
	now := time.Now()
	b := &domain.Basket{
		ID:        uuid.New().String(),
		Items:     []domain.BasketItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO baskets (id, items_json, subtotal, tax, total, discount_amount, discount_code,
	          customer_email, customer_name, note, status, created_at, updated_at)
	          VALUES (?, '[]', 0, 0, 0, 0, '', '', '', '', 'active', ?, ?)`
	if _, err := tx.ExecContext(ctx, query, b.ID, toNanos(now), toNanos(now)); err != nil {
		return nil, fmt.Errorf("create basket: %w", err)
	}
	return b, nil
}

func writeBasket(ctx context.Context, tx *sql.Tx, b *domain.Basket) error {
	itemsJSON, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshal basket items: %w", err)
	}

	query := `UPDATE baskets
	          SET items_json = ?, subtotal = ?, tax = ?, total = ?, discount_amount = ?, discount_code = ?,
	              customer_email = ?, customer_name = ?, note = ?, updated_at = ?
	          WHERE id = ?`
	_, err = tx.ExecContext(ctx, query,
		itemsJSON,
		b.Subtotal,
		b.Tax,
		b.Total,
		b.DiscountAmount,
		b.DiscountCode,
		b.CustomerEmail,
		b.CustomerName,
		b.Note,
		toNanos(b.UpdatedAt),
		b.ID)
	if err != nil {
		return fmt.Errorf("update basket: %w", err)
	}
	return nil
}

// clearActiveBasket removes the active basket row. Runs inside the payment
// completion transaction so the cart only disappears once the sale is durable.
func clearActiveBasket(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM baskets WHERE status = 'active'`); err != nil {
		return fmt.Errorf("clear basket: %w", err)
	}
	return nil
}
