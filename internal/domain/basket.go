package domain

import (
	"fmt"
	"math"
	"time"
)

// BasketItem is one line of the active basket. Prices are integer cents.
type BasketItem struct {
	ID                 string            `json:"id"`
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

// LineTotal is price * quantity in cents.
func (i BasketItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// LineTax is the tax for this line, rounded to the cent.
func (i BasketItem) LineTax() int64 {
	if !i.Taxable || i.TaxRate <= 0 {
		return 0
	}
	return int64(math.Round(float64(i.LineTotal()) * i.TaxRate))
}

// Validate rejects item payloads that cannot have come from this code.
// Basket items round-trip through a JSON column, so every read re-checks them.
func (i BasketItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("basket item has empty id")
	}
	if i.Name == "" {
		return fmt.Errorf("basket item %s has empty name", i.ID)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("basket item %s has quantity %d", i.ID, i.Quantity)
	}
	if i.Price < 0 {
		return fmt.Errorf("basket item %s has negative price", i.ID)
	}
	if i.TaxRate < 0 {
		return fmt.Errorf("basket item %s has negative tax rate", i.ID)
	}
	return nil
}

// Basket is the single mutable in-progress cart. Totals are derived from the
// item list and recomputed inside every mutating transaction.
type Basket struct {
	ID             string       `json:"id"`
	Items          []BasketItem `json:"items"`
	Subtotal       int64        `json:"subtotal"`
	Tax            int64        `json:"tax"`
	Total          int64        `json:"total"`
	DiscountAmount int64        `json:"discount_amount,omitempty"`
	DiscountCode   string       `json:"discount_code,omitempty"`
	CustomerEmail  string       `json:"customer_email,omitempty"`
	CustomerName   string       `json:"customer_name,omitempty"`
	Note           string       `json:"note,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Recompute rebuilds subtotal, tax and total from the item list.
func (b *Basket) Recompute() {
	var subtotal, tax int64
	for _, item := range b.Items {
		subtotal += item.LineTotal()
		tax += item.LineTax()
	}
	b.Subtotal = subtotal
	b.Tax = tax
	b.Total = subtotal + tax - b.DiscountAmount
}

// ValidateItems checks every line after a JSON read.
func (b *Basket) ValidateItems() error {
	for _, item := range b.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the basket has no lines.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}
