package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tillworks/poscore/internal/domain"
	"github.com/tillworks/poscore/internal/repository"
)

// DiscountResolver validates a discount code and returns the discount amount
// in cents for the given basket. Unknown codes return
// domain.ErrInvalidDiscountCode. Implemented outside this core.
type DiscountResolver interface {
	Resolve(ctx context.Context, code string, basket *domain.Basket) (int64, error)
}

// BasketService manages the single active cart. Every mutation runs as one
// store transaction that recomputes subtotal, tax and total, so the totals
// can never drift from the item list, even under failure.
type BasketService struct {
	store     repository.BasketStore
	discounts DiscountResolver
	logger    *zap.Logger
}

func NewBasketService(store repository.BasketStore, discounts DiscountResolver, logger *zap.Logger) *BasketService {
	return &BasketService{
		store:     store,
		discounts: discounts,
		logger:    logger,
	}
}

func (s *BasketService) GetBasket(ctx context.Context) (*domain.Basket, error) {
	return s.store.GetBasket(ctx)
}

// AddItem appends a line to the basket. Lines are never merged: two adds of
// the same product are two lines, matching how the register rings items up.
func (s *BasketService) AddItem(ctx context.Context, item domain.BasketItem) (*domain.Basket, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("invalid basket item: %w", err)
	}

	basket, err := s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		b.Items = append(b.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("item added to basket",
		zap.String("item_id", item.ID),
		zap.String("product_id", item.ProductID),
		zap.Int("quantity", item.Quantity))
	return basket, nil
}

// UpdateItemQuantity changes a line's quantity; zero or below removes it.
func (s *BasketService) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.Basket, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		for i := range b.Items {
			if b.Items[i].ID == itemID {
				b.Items[i].Quantity = quantity
				return nil
			}
		}
		return fmt.Errorf("basket item %s not found", itemID)
	})
}

func (s *BasketService) RemoveItem(ctx context.Context, itemID string) (*domain.Basket, error) {
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		items := b.Items[:0]
		for _, item := range b.Items {
			if item.ID != itemID {
				items = append(items, item)
			}
		}
		b.Items = items
		return nil
	})
}

// ClearBasket empties the cart, dropping the discount and customer details
// with it.
func (s *BasketService) ClearBasket(ctx context.Context) (*domain.Basket, error) {
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		b.Items = []domain.BasketItem{}
		b.DiscountAmount = 0
		b.DiscountCode = ""
		b.CustomerEmail = ""
		b.CustomerName = ""
		b.Note = ""
		return nil
	})
}

// ApplyDiscount validates the code with the external resolver and stores the
// resolved amount. Resolution happens inside the mutation so the amount is
// computed against the basket state it applies to.
func (s *BasketService) ApplyDiscount(ctx context.Context, code string) (*domain.Basket, error) {
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		amount, err := s.discounts.Resolve(ctx, code, b)
		if err != nil {
			return err
		}
		b.DiscountCode = code
		b.DiscountAmount = amount
		return nil
	})
}

func (s *BasketService) RemoveDiscount(ctx context.Context) (*domain.Basket, error) {
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		b.DiscountCode = ""
		b.DiscountAmount = 0
		return nil
	})
}

func (s *BasketService) SetCustomer(ctx context.Context, email, name string) (*domain.Basket, error) {
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		b.CustomerEmail = email
		b.CustomerName = name
		return nil
	})
}

func (s *BasketService) SetNote(ctx context.Context, note string) (*domain.Basket, error) {
	return s.store.MutateBasket(ctx, func(b *domain.Basket) error {
		b.Note = note
		return nil
	})
}
