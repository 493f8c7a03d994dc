package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

// Evaluation reports how a submitted total compares to history.
type Evaluation struct {
	SubmittedTotal     decimal.Decimal
	HistoricalAvgTotal decimal.Decimal
	DeviationRatio     decimal.Decimal
	OverThreshold      bool
}

// OpenApprovalInput creates a pending approval record.
type OpenApprovalInput struct {
	OrderNo     string
	RequestedBy string
	Evaluation  Evaluation
}

// ResolveInput resolves a pending approval record exactly once.
type ResolveInput struct {
	ApprovalNo string
	Approved   bool
	ResolvedBy string
	Remark     string
}

// Service defines the approvals use cases exposed to adapters.
type Service interface {
	Evaluate(ctx context.Context, orderNo string, submittedTotal decimal.Decimal) (Evaluation, error)
	Open(ctx context.Context, input OpenApprovalInput) (*projection.Projection[*domain.ApprovalRecord], error)
	Resolve(ctx context.Context, input ResolveInput) (*projection.Projection[*domain.ApprovalRecord], error)
	GetByNo(ctx context.Context, approvalNo string) (*projection.Projection[*domain.ApprovalRecord], error)
	ListPending(ctx context.Context) ([]*projection.Projection[*domain.ApprovalRecord], error)
}

// OrderCommitter pushes a resolved approval back into the orders context so
// the parked order moves forward.
type OrderCommitter interface {
	ApplyApprovalOutcome(ctx context.Context, orderNo, operator string, approved bool, remark string) error
}
