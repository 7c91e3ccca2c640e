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

const orderColumns = `id, platform_order_id, platform, subtotal, tax, total, discount_amount, discount_code,
	customer_email, customer_name, note, payment_method, payment_transaction_id, cashier_id, cashier_name,
	status, sync_status, sync_error, created_at, updated_at, paid_at, synced_at`

// CreateOrderFromBasket snapshots the active basket into the given order
// skeleton and persists order plus line items, all in one transaction. The
// basket is left untouched: an abandoned checkout must not lose the cart.
func (r *Repository) CreateOrderFromBasket(ctx context.Context, order *domain.LocalOrder) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		basket, err := loadOrCreateBasket(ctx, tx)
		if err != nil {
			return err
		}
		if basket.IsEmpty() {
			return domain.ErrEmptyBasket
		}

		order.Subtotal = basket.Subtotal
		order.Tax = basket.Tax
		order.Total = basket.Total
		order.DiscountAmount = basket.DiscountAmount
		order.DiscountCode = basket.DiscountCode
		order.CustomerEmail = basket.CustomerEmail
		order.CustomerName = basket.CustomerName
		order.Note = basket.Note

		order.Items = make([]domain.OrderItem, 0, len(basket.Items))
		for _, item := range basket.Items {
			order.Items = append(order.Items, domain.OrderItem{
				ID:                 uuid.New().String(),
				OrderID:            order.ID,
				ProductID:          item.ProductID,
				VariantID:          item.VariantID,
				SKU:                item.SKU,
				Name:               item.Name,
				Price:              item.Price,
				Quantity:           item.Quantity,
				Taxable:            item.Taxable,
				TaxRate:            item.TaxRate,
				IsEcommerceProduct: item.IsEcommerceProduct,
				OriginalID:         item.OriginalID,
				Properties:         item.Properties,
			})
		}

		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		return insertOrderItems(ctx, tx, order.Items)
	})
}

func insertOrder(ctx context.Context, tx *sql.Tx, o *domain.LocalOrder) error {
	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, query,
		o.ID,
		o.PlatformOrderID,
		o.Platform,
		o.Subtotal,
		o.Tax,
		o.Total,
		o.DiscountAmount,
		o.DiscountCode,
		o.CustomerEmail,
		o.CustomerName,
		o.Note,
		o.PaymentMethod,
		o.PaymentTransactionID,
		o.CashierID,
		o.CashierName,
		o.Status,
		o.SyncStatus,
		o.SyncError,
		toNanos(o.CreatedAt),
		toNanos(o.UpdatedAt),
		toNullNanos(o.PaidAt),
		toNullNanos(o.SyncedAt))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error {
	query := `INSERT INTO order_items (id, order_id, product_id, variant_id, sku, name, price, quantity,
	          taxable, tax_rate, is_ecommerce_product, original_id, properties)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, item := range items {
		props := []byte("{}")
		if item.Properties != nil {
			var err error
			props, err = json.Marshal(item.Properties)
			if err != nil {
				return fmt.Errorf("marshal item properties: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.SKU,
			item.Name,
			item.Price,
			item.Quantity,
			item.Taxable,
			item.TaxRate,
			item.IsEcommerceProduct,
			item.OriginalID,
			props)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.ID, err)
		}
	}
	return nil
}

// GetOrder loads one order with its line items.
func (r *Repository) GetOrder(ctx context.Context, id string) (*domain.LocalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadOrderItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (r *Repository) ListOrders(ctx context.Context, status *domain.OrderStatus) ([]*domain.LocalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryOrders(ctx, query, args...)
}

// ListUnsyncedOrders returns paid orders still awaiting reconciliation.
func (r *Repository) ListUnsyncedOrders(ctx context.Context) ([]*domain.LocalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE status IN ('paid', 'synced') AND sync_status IN ('pending', 'failed')
	          ORDER BY created_at ASC`
	return r.queryOrders(ctx, query)
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.LocalOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.LocalOrder
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	items, err := r.loadOrderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = items[order.ID]
	}
	return orders, nil
}

// UpdateOrderStatus moves an order from one status to another. The UPDATE is
// guarded by the expected current status so a concurrent transition loses
// cleanly instead of overwriting.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, to, toNanos(time.Now()), id, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

// CompletePayment marks the order paid, clears the basket and enqueues the
// sync ledger entry in a single transaction. A crash can therefore never
// leave a paid order without a ledger entry, or clear the cart before the
// sale is durable.
func (r *Repository) CompletePayment(ctx context.Context, id, method, transactionID string, paidAt time.Time) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `UPDATE orders
		          SET status = 'paid', payment_method = ?, payment_transaction_id = ?, paid_at = ?, updated_at = ?
		          WHERE id = ? AND status IN ('pending', 'processing')`
		res, err := tx.ExecContext(ctx, query, method, transactionID, toNanos(paidAt), toNanos(paidAt), id)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if affected == 0 {
			return domain.ErrInvalidStateTransition
		}

		if err := clearActiveBasket(ctx, tx); err != nil {
			return err
		}

		enqueue := `INSERT INTO sync_queue (order_id, attempt_count, next_eligible_at, last_error)
		            VALUES (?, 0, ?, '')
		            ON CONFLICT (order_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, enqueue, id, toNanos(paidAt)); err != nil {
			return fmt.Errorf("enqueue sync entry: %w", err)
		}
		return nil
	})
}

// FailPayment records a payment failure. The basket is deliberately left
// alone so the cashier can retry the sale without re-entering items.
func (r *Repository) FailPayment(ctx context.Context, id, reason string) error {
	query := `UPDATE orders SET status = 'failed', sync_error = ?, updated_at = ?
	          WHERE id = ? AND status IN ('pending', 'processing')`
	res, err := r.db.ExecContext(ctx, query, reason, toNanos(time.Now()), id)
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	if affected == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.LocalOrder, error) {
	o := &domain.LocalOrder{}
	var createdAt, updatedAt int64
	var paidAt, syncedAt sql.NullInt64
	err := row.Scan(
		&o.ID,
		&o.PlatformOrderID,
		&o.Platform,
		&o.Subtotal,
		&o.Tax,
		&o.Total,
		&o.DiscountAmount,
		&o.DiscountCode,
		&o.CustomerEmail,
		&o.CustomerName,
		&o.Note,
		&o.PaymentMethod,
		&o.PaymentTransactionID,
		&o.CashierID,
		&o.CashierName,
		&o.Status,
		&o.SyncStatus,
		&o.SyncError,
		&createdAt,
		&updatedAt,
		&paidAt,
		&syncedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.CreatedAt = fromNanos(createdAt)
	o.UpdatedAt = fromNanos(updatedAt)
	o.PaidAt = fromNullNanos(paidAt)
	o.SyncedAt = fromNullNanos(syncedAt)
	return o, nil
}

func (r *Repository) loadOrderItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	result := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `SELECT id, order_id, product_id, variant_id, sku, name, price, quantity,
	          taxable, tax_rate, is_ecommerce_product, original_id, properties
	          FROM order_items WHERE order_id IN (?` + repeatPlaceholder(len(orderIDs)-1) + `)
	          ORDER BY rowid`
	args := make([]any, 0, len(orderIDs))
	for _, id := range orderIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var props []byte
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.SKU,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.Taxable,
			&item.TaxRate,
			&item.IsEcommerceProduct,
			&item.OriginalID,
			&props,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if len(props) > 0 && string(props) != "{}" && string(props) != "null" {
			if err := json.Unmarshal(props, &item.Properties); err != nil {
				return nil, fmt.Errorf("unmarshal item properties: %w", err)
			}
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
