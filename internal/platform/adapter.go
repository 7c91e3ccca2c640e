package platform

import (
	"context"

	"github.com/tillworks/poscore/internal/domain"
)

// Adapter submits a locally paid order to the remote commerce platform and
// returns the platform's order id. Implementations must be idempotent per
// order id: submitting the same order twice must not create a duplicate
// remote record.
type Adapter interface {
	SubmitOrder(ctx context.Context, order *domain.LocalOrder) (platformOrderID string, err error)
}
