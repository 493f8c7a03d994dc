package ports

import (
	"context"
	"time"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

// OrderDetail is the read model for a single order: the projection plus the
// reconciled per-line quote matrix.
type OrderDetail struct {
	Projection *orderstypes.OrderProjection
	Lines      []orderstypes.ReconciledLineView
}

// Service defines the order use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateDraft(ctx context.Context, input orderstypes.CreateDraftInput) (*orderstypes.OrderProjection, error)
	UpdateDraftQuantities(ctx context.Context, orderNo string, edits []orderstypes.QuantityEdit) (*orderstypes.OrderProjection, error)
	SubmitDraft(ctx context.Context, orderNo, operator string) (*orderstypes.OrderProjection, error)
	ResolveDraftApproval(ctx context.Context, orderNo, operator string, approved bool, remark string) (*orderstypes.OrderProjection, error)
	SendInquiry(ctx context.Context, orderNo, operator string, deadline time.Time) (*orderstypes.OrderProjection, error)
	CompleteInquiry(ctx context.Context, orderNo, operator string) (*orderstypes.OrderProjection, error)
	GetOrderDetail(ctx context.Context, orderNo string) (*OrderDetail, error)
	ListOrders(ctx context.Context, filter orderstypes.ListFilter) ([]*orderstypes.OrderProjection, error)
	GetTimeline(ctx context.Context, orderNo string) ([]domain.TimelineEntry, error)
	RecordChoice(ctx context.Context, orderNo string, pair orderstypes.SelectionPair) error
	ClearChoices(orderNo string)
	SubmitSelections(ctx context.Context, input orderstypes.SubmitSelectionsInput) (*orderstypes.SelectionOutcome, error)
	ApplyApprovalOutcome(ctx context.Context, orderNo, operator string, approved bool, remark string) (*orderstypes.OrderProjection, error)
	ConfirmArrival(ctx context.Context, input orderstypes.ConfirmArrivalInput) (*orderstypes.OrderProjection, error)
}
