package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

var ErrNotFound = errors.New("approval record not found")

// Repository persists price approval records.
type Repository interface {
	Save(ctx context.Context, record *domain.ApprovalRecord) (*projection.Projection[*domain.ApprovalRecord], error)
	GetByNo(ctx context.Context, approvalNo string) (*projection.Projection[*domain.ApprovalRecord], error)
	ListPending(ctx context.Context) ([]*projection.Projection[*domain.ApprovalRecord], error)
}

// HistoricalPricing supplies the baseline an incoming selection total is
// compared against.
type HistoricalPricing interface {
	// BaselineTotal returns the historical average total for the order's
	// SKU mix, or zero when no history exists.
	BaselineTotal(ctx context.Context, orderNo string) (decimal.Decimal, error)
}
