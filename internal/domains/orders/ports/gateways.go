package ports

import (
	"context"

	"github.com/shopspring/decimal"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
)

// QuoteReader exposes the supplier quotes submitted against an order.
// Implemented by the quotes bounded context.
type QuoteReader interface {
	QuotesByOrder(ctx context.Context, orderNo string) ([]orderstypes.QuoteView, error)
}

// ApprovalGateway runs the price-threshold check for a committed selection
// and opens an approval record when the total deviates too far. Implemented
// by the approvals bounded context.
type ApprovalGateway interface {
	Evaluate(ctx context.Context, orderNo string, submittedTotal decimal.Decimal) (orderstypes.ThresholdDecision, error)
	// OpenApproval creates a pending approval record and returns its number.
	OpenApproval(ctx context.Context, orderNo, operator string, decision orderstypes.ThresholdDecision) (string, error)
}

// SupplierNotifier tells winning suppliers their quotes were chosen. Failures
// are reported but must not roll the commit back.
type SupplierNotifier interface {
	NotifySelected(ctx context.Context, orderNo string, quoteNos []int64) error
}
