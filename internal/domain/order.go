package domain

import "time"

// OrderItem is a frozen copy of a basket line, taken at checkout. Once the
// parent order is paid it never changes again.
type OrderItem struct {
	ID                 string            `json:"id"`
	OrderID            string            `json:"order_id"`
	ProductID          string            `json:"product_id"`
	VariantID          string            `json:"variant_id,omitempty"`
	SKU                string            `json:"sku,omitempty"`
	Name               string            `json:"name"`
	Price              int64             `json:"price"`
	Quantity           int               `json:"quantity"`
	Taxable            bool              `json:"taxable"`
	TaxRate            float64           `json:"tax_rate,omitempty"`
	IsEcommerceProduct bool              `json:"is_ecommerce_product,omitempty"`
	OriginalID         string            `json:"original_id,omitempty"`
	Properties         map[string]string `json:"properties,omitempty"`
}

// LocalOrder is the durable record of a sale. Items and totals are immutable
// once Status reaches paid; only the sync-related fields change after that.
type LocalOrder struct {
	ID                   string      `json:"id"`
	PlatformOrderID      string      `json:"platform_order_id,omitempty"`
	Platform             string      `json:"platform,omitempty"`
	Items                []OrderItem `json:"items"`
	Subtotal             int64       `json:"subtotal"`
	Tax                  int64       `json:"tax"`
	Total                int64       `json:"total"`
	DiscountAmount       int64       `json:"discount_amount,omitempty"`
	DiscountCode         string      `json:"discount_code,omitempty"`
	CustomerEmail        string      `json:"customer_email,omitempty"`
	CustomerName         string      `json:"customer_name,omitempty"`
	Note                 string      `json:"note,omitempty"`
	PaymentMethod        string      `json:"payment_method,omitempty"`
	PaymentTransactionID string      `json:"payment_transaction_id,omitempty"`
	CashierID            string      `json:"cashier_id,omitempty"`
	CashierName          string      `json:"cashier_name,omitempty"`
	Status               OrderStatus `json:"status"`
	SyncStatus           SyncStatus  `json:"sync_status"`
	SyncError            string      `json:"sync_error,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
	PaidAt               *time.Time  `json:"paid_at,omitempty"`
	SyncedAt             *time.Time  `json:"synced_at,omitempty"`
}

// NeedsSync reports whether the order still awaits reconciliation.
func (o *LocalOrder) NeedsSync() bool {
	return (o.Status == OrderStatusPaid || o.Status == OrderStatusSynced) &&
		o.SyncStatus != SyncStatusSynced
}

// CheckoutResult is returned to the caller after a payment outcome is recorded.
type CheckoutResult struct {
	Success         bool   `json:"success"`
	OrderID         string `json:"order_id"`
	PlatformOrderID string `json:"platform_order_id,omitempty"`
	Error           string `json:"error,omitempty"`
}
