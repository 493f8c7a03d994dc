// Package mapper translates between the orders HTTP wire format and the
// application layer's inputs and projections.
package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	ordersports "github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

// CreateOrderItem is one requested line in a draft creation payload.
type CreateOrderItem struct {
	SKUID    int64  `json:"skuId" binding:"required"`
	SKUName  string `json:"skuName"`
	Brand    string `json:"brand"`
	Quantity int64  `json:"quantity" binding:"required"`
}

// CreateOrder is the draft creation payload.
type CreateOrder struct {
	StoreName            string            `json:"storeName" binding:"required"`
	CreatorName          string            `json:"creatorName" binding:"required"`
	ExpectedDeliveryDate time.Time         `json:"expectedDeliveryDate"`
	Remark               string            `json:"remark"`
	Items                []CreateOrderItem `json:"items" binding:"required"`
}

// ToCreateDraftInput converts the wire payload into the application input.
func ToCreateDraftInput(payload CreateOrder) orderstypes.CreateDraftInput {
	input := orderstypes.CreateDraftInput{
		StoreName:            payload.StoreName,
		CreatorName:          payload.CreatorName,
		ExpectedDeliveryDate: payload.ExpectedDeliveryDate,
		Remark:               payload.Remark,
	}
	for _, item := range payload.Items {
		input.Items = append(input.Items, domain.LineItemSpec{
			SKUID:    item.SKUID,
			SKUName:  item.SKUName,
			Brand:    item.Brand,
			Quantity: item.Quantity,
		})
	}
	return input
}

// QuantityEdit is one quantity change for a draft line item.
type QuantityEdit struct {
	ItemID   int64 `json:"itemId" binding:"required"`
	Quantity int64 `json:"quantity" binding:"required"`
}

// ToQuantityEdits converts the wire payload into application edits.
func ToQuantityEdits(payload []QuantityEdit) []orderstypes.QuantityEdit {
	edits := make([]orderstypes.QuantityEdit, 0, len(payload))
	for _, edit := range payload {
		edits = append(edits, orderstypes.QuantityEdit{ItemID: edit.ItemID, Quantity: edit.Quantity})
	}
	return edits
}

// OperatorRequest carries the acting operator for a plain transition.
type OperatorRequest struct {
	Operator string `json:"operator" binding:"required"`
}

// DecisionRequest carries an approve/reject decision.
type DecisionRequest struct {
	Operator string `json:"operator" binding:"required"`
	Approved *bool  `json:"approved" binding:"required"`
	Remark   string `json:"remark"`
}

// InquiryRequest opens the supplier inquiry window.
type InquiryRequest struct {
	Operator string    `json:"operator" binding:"required"`
	Deadline time.Time `json:"deadline" binding:"required"`
}

// ChoiceRequest binds one line item to one quote line.
type ChoiceRequest struct {
	OrderItemID int64 `json:"orderItemId" binding:"required"`
	QuoteNo     int64 `json:"quoteNo" binding:"required"`
	QuoteLineID int64 `json:"quoteLineId" binding:"required"`
}

// ToSelectionPair converts a choice into the application pair.
func ToSelectionPair(payload ChoiceRequest) orderstypes.SelectionPair {
	return orderstypes.SelectionPair{
		OrderItemID: payload.OrderItemID,
		QuoteNo:     payload.QuoteNo,
		QuoteLineID: payload.QuoteLineID,
	}
}

// SubmittedChoice is one batch entry. The quote fields are optional: an
// entry without them is a cleared choice and the service drops it.
type SubmittedChoice struct {
	OrderItemID int64 `json:"orderItemId" binding:"required"`
	QuoteNo     int64 `json:"quoteNo"`
	QuoteLineID int64 `json:"quoteLineId"`
}

// SelectionsRequest commits a batch of supplier choices.
type SelectionsRequest struct {
	Operator string            `json:"operator" binding:"required"`
	Pairs    []SubmittedChoice `json:"pairs"`
}

// ToSubmitSelectionsInput converts the wire payload into the atomic command.
func ToSubmitSelectionsInput(orderNo string, payload SelectionsRequest) orderstypes.SubmitSelectionsInput {
	input := orderstypes.SubmitSelectionsInput{OrderNo: orderNo, Operator: payload.Operator}
	for _, pair := range payload.Pairs {
		input.Pairs = append(input.Pairs, orderstypes.SelectionPair{
			OrderItemID: pair.OrderItemID,
			QuoteNo:     pair.QuoteNo,
			QuoteLineID: pair.QuoteLineID,
		})
	}
	return input
}

// ArrivalRequest confirms arrival for the referenced quotes.
type ArrivalRequest struct {
	Operator  string  `json:"operator" binding:"required"`
	QuoteRefs []int64 `json:"quoteRefs" binding:"required"`
}

// OrderItem is the wire shape of one order line item.
type OrderItem struct {
	ID               int64           `json:"id"`
	SKUID            int64           `json:"skuId"`
	SKUName          string          `json:"skuName"`
	Brand            string          `json:"brand,omitempty"`
	Quantity         int64           `json:"quantity"`
	Status           string          `json:"status"`
	SupplierName     string          `json:"supplierName,omitempty"`
	QuoteNo          int64           `json:"quoteNo,omitempty"`
	QuoteLineID      int64           `json:"quoteLineId,omitempty"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	ExpectedDelivery *time.Time      `json:"expectedDelivery,omitempty"`
	ArrivedAt        *time.Time      `json:"arrivedAt,omitempty"`
}

// Order is the wire shape of a purchase order.
type Order struct {
	OrderNo              string      `json:"orderNo"`
	StoreName            string      `json:"storeName"`
	CreatorName          string      `json:"creatorName"`
	ExpectedDeliveryDate *time.Time  `json:"expectedDeliveryDate,omitempty"`
	InquiryDeadline      *time.Time  `json:"inquiryDeadline,omitempty"`
	Remark               string      `json:"remark,omitempty"`
	Status               string      `json:"status"`
	Items                []OrderItem `json:"items"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// FromProjection renders a stored order for the wire.
func FromProjection(p *orderstypes.OrderProjection) Order {
	order := Order{
		OrderNo:              p.Order.OrderNo,
		StoreName:            p.Order.StoreName,
		CreatorName:          p.Order.CreatorName,
		ExpectedDeliveryDate: optionalTime(p.Order.ExpectedDeliveryDate),
		InquiryDeadline:      optionalTime(p.Order.InquiryDeadline),
		Remark:               p.Order.Remark,
		Status:               string(p.Order.Status),
		Items:                make([]OrderItem, 0, len(p.Order.Items)),
		CreatedAt:            p.Metadata.CreatedAt,
		UpdatedAt:            p.Metadata.UpdatedAt,
	}
	for _, item := range p.Order.Items {
		order.Items = append(order.Items, OrderItem{
			ID:               item.ID,
			SKUID:            item.SKUID,
			SKUName:          item.SKUName,
			Brand:            item.Brand,
			Quantity:         item.Quantity,
			Status:           string(item.Status),
			SupplierName:     item.SupplierName,
			QuoteNo:          item.QuoteNo,
			QuoteLineID:      item.QuoteLineID,
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
			ExpectedDelivery: optionalTime(item.ExpectedDelivery),
			ArrivedAt:        item.ArrivedAt,
		})
	}
	return order
}

// FromProjectionList renders a listing.
func FromProjectionList(projections []*orderstypes.OrderProjection) []Order {
	orders := make([]Order, 0, len(projections))
	for _, p := range projections {
		orders = append(orders, FromProjection(p))
	}
	return orders
}

// CompetingQuote is one supplier offer attached to a reconciled line.
type CompetingQuote struct {
	QuoteNo          int64           `json:"quoteNo"`
	QuoteLineID      int64           `json:"quoteLineId"`
	SupplierName     string          `json:"supplierName"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	ExpectedDelivery *time.Time      `json:"expectedDelivery,omitempty"`
	Remark           string          `json:"remark,omitempty"`
}

// ReconciledLine is one row of the per-line quote matrix.
type ReconciledLine struct {
	Key          string           `json:"key"`
	OrderItemID  int64            `json:"orderItemId,omitempty"`
	SKUID        int64            `json:"skuId"`
	SKUName      string           `json:"skuName"`
	Brand        string           `json:"brand,omitempty"`
	Quantity     int64            `json:"quantity"`
	Status       string           `json:"status,omitempty"`
	SupplierName string           `json:"supplierName,omitempty"`
	Placeholder  bool             `json:"placeholder,omitempty"`
	Quotes       []CompetingQuote `json:"quotes"`
}

// OrderDetail is the wire shape of an order plus its reconciled lines.
type OrderDetail struct {
	Order Order            `json:"order"`
	Lines []ReconciledLine `json:"lines"`
}

// FromDetail renders an order detail for the wire.
func FromDetail(detail *ordersports.OrderDetail) OrderDetail {
	out := OrderDetail{
		Order: FromProjection(detail.Projection),
		Lines: make([]ReconciledLine, 0, len(detail.Lines)),
	}
	for _, line := range detail.Lines {
		row := ReconciledLine{
			Key:          line.Key,
			OrderItemID:  line.OrderItemID,
			SKUID:        line.SKUID,
			SKUName:      line.SKUName,
			Brand:        line.Brand,
			Quantity:     line.Quantity,
			Status:       string(line.Status),
			SupplierName: line.SupplierName,
			Placeholder:  line.Placeholder,
			Quotes:       make([]CompetingQuote, 0, len(line.Quotes)),
		}
		for _, quote := range line.Quotes {
			row.Quotes = append(row.Quotes, CompetingQuote{
				QuoteNo:          quote.QuoteNo,
				QuoteLineID:      quote.QuoteLineID,
				SupplierName:     quote.SupplierName,
				UnitPrice:        quote.UnitPrice,
				TotalPrice:       quote.TotalPrice,
				ExpectedDelivery: optionalTime(quote.ExpectedDelivery),
				Remark:           quote.Remark,
			})
		}
		out.Lines = append(out.Lines, row)
	}
	return out
}

// SelectionResult reports how a selection commit resolved.
type SelectionResult struct {
	Order              Order           `json:"order"`
	SubmittedTotal     decimal.Decimal `json:"submittedTotal"`
	HistoricalAvgTotal decimal.Decimal `json:"historicalAvgTotal"`
	DeviationRatio     decimal.Decimal `json:"deviationRatio"`
	OverThreshold      bool            `json:"overThreshold"`
	ApprovalNo         string          `json:"approvalNo,omitempty"`
}

// FromSelectionOutcome renders the outcome of a selection commit.
func FromSelectionOutcome(outcome *orderstypes.SelectionOutcome) SelectionResult {
	return SelectionResult{
		Order:              FromProjection(outcome.Projection),
		SubmittedTotal:     outcome.Decision.SubmittedTotal,
		HistoricalAvgTotal: outcome.Decision.HistoricalAvgTotal,
		DeviationRatio:     outcome.Decision.DeviationRatio,
		OverThreshold:      outcome.Decision.OverThreshold,
		ApprovalNo:         outcome.ApprovalNo,
	}
}

// TimelineEntry is one row of the display timeline.
type TimelineEntry struct {
	Status    string    `json:"status"`
	Operator  string    `json:"operator,omitempty"`
	Remark    string    `json:"remark,omitempty"`
	At        time.Time `json:"at"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

// FromTimeline renders the display timeline.
func FromTimeline(entries []domain.TimelineEntry) []TimelineEntry {
	timeline := make([]TimelineEntry, 0, len(entries))
	for _, entry := range entries {
		timeline = append(timeline, TimelineEntry{
			Status:    string(entry.Status),
			Operator:  entry.Operator,
			Remark:    entry.Remark,
			At:        entry.At,
			Synthetic: entry.Synthetic,
		})
	}
	return timeline
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
