package domain

import "errors"

var (
	ErrEmptyBasket            = errors.New("basket is empty, nothing to check out")
	ErrInvalidStateTransition = errors.New("illegal order status transition")
	ErrInvalidDiscountCode    = errors.New("unknown discount code")
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderNotPaid           = errors.New("order is not paid, nothing to sync")
)
