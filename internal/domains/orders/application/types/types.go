package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

// OrderMetadata captures infrastructure timestamps associated with a persisted order.
type OrderMetadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderProjection transports the order aggregate together with its persistence metadata.
type OrderProjection struct {
	Order    *domain.PurchaseOrder
	Metadata OrderMetadata
}

// NewOrderProjection wraps an aggregate with persistence metadata.
func NewOrderProjection(order *domain.PurchaseOrder, createdAt, updatedAt time.Time) *OrderProjection {
	if order == nil {
		return nil
	}
	return &OrderProjection{
		Order: order,
		Metadata: OrderMetadata{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
	}
}

// CreateDraftInput carries everything needed to open a new draft order.
type CreateDraftInput struct {
	StoreName            string
	CreatorName          string
	ExpectedDeliveryDate time.Time
	Remark               string
	Items                []domain.LineItemSpec
}

// QuantityEdit is one draft-cart quantity change for a line item.
type QuantityEdit struct {
	ItemID   int64
	Quantity int64
}

// ListFilter narrows order listings.
type ListFilter struct {
	Statuses    []domain.OrderStatus
	CreatorName string
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// QuoteLineView is one priced line of a supplier quote as seen by the
// reconciler. OrderItemID is optional; SKU matching is the fallback.
type QuoteLineView struct {
	LineID           int64
	OrderItemID      int64
	SKUID            int64
	SKUName          string
	Quantity         int64
	UnitPrice        decimal.Decimal
	ExpectedDelivery time.Time
	Remark           string
}

// QuoteView is one supplier quote submitted against an order.
type QuoteView struct {
	QuoteNo      int64
	SupplierName string
	SubmittedAt  time.Time
	Lines        []QuoteLineView
}

// CompetingQuote is one supplier's offer attached to a reconciled line.
type CompetingQuote struct {
	QuoteNo          int64
	QuoteLineID      int64
	SupplierName     string
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	ExpectedDelivery time.Time
	Remark           string
}

// ReconciledLineView is the derived per-line-item row carrying every
// competing quote. It is rebuilt on every read and never mutated in place.
type ReconciledLineView struct {
	Key          string
	OrderItemID  int64
	SKUID        int64
	SKUName      string
	Brand        string
	Quantity     int64
	Status       domain.ItemStatus
	SupplierName string
	Quotes       []CompetingQuote
	// Placeholder marks a row synthesized for a quote line that matched
	// no order line item, so the quote is not silently dropped.
	Placeholder bool
}

// SelectionPair identifies one line item / chosen quote binding inside an
// atomic select-suppliers command.
type SelectionPair struct {
	OrderItemID int64
	QuoteNo     int64
	QuoteLineID int64
}

// SubmitSelectionsInput is the atomic select-suppliers command payload.
type SubmitSelectionsInput struct {
	OrderNo  string
	Pairs    []SelectionPair
	Operator string
}

// ConfirmArrivalInput identifies which ordered line items have arrived.
type ConfirmArrivalInput struct {
	OrderNo   string
	QuoteRefs []int64
	Operator  string
}

// ThresholdDecision is the outcome of the price-threshold check for a
// submitted selection. Identical totals always yield an identical decision.
type ThresholdDecision struct {
	SubmittedTotal     decimal.Decimal
	HistoricalAvgTotal decimal.Decimal
	DeviationRatio     decimal.Decimal
	OverThreshold      bool
}

// SelectionOutcome reports how a selection commit resolved.
type SelectionOutcome struct {
	Projection *OrderProjection
	Decision   ThresholdDecision
	// ApprovalNo is set when the decision forked into the approval branch.
	ApprovalNo string
}
