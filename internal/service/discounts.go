package service

import (
	"context"
	"strings"

	"github.com/tillworks/poscore/internal/domain"
)

// StaticResolver is a table-backed DiscountResolver mapping codes to fixed
// amounts in cents. It stands in until a real campaign service is plugged in;
// an empty table rejects every code.
type StaticResolver map[string]int64

func (r StaticResolver) Resolve(_ context.Context, code string, _ *domain.Basket) (int64, error) {
	amount, ok := r[strings.ToUpper(code)]
	if !ok {
		return 0, domain.ErrInvalidDiscountCode
	}
	return amount, nil
}
