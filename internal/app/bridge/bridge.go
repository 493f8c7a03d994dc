// Package bridge adapts one bounded context's service to the ports another
// context consumes. All cross-context traffic flows through these adapters;
// the contexts themselves never import each other.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	approvalsports "github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	ordersports "github.com/partsflow/procurement-api/internal/domains/orders/ports"
	quotesapp "github.com/partsflow/procurement-api/internal/domains/quotes/application"
	quotesports "github.com/partsflow/procurement-api/internal/domains/quotes/ports"
)

// QuoteReader exposes the quotes context to the orders reconciler.
type QuoteReader struct {
	quotes quotesports.Service
}

// NewQuoteReader adapts the quotes service to the orders QuoteReader port.
func NewQuoteReader(quotes quotesports.Service) *QuoteReader {
	return &QuoteReader{quotes: quotes}
}

// QuotesByOrder converts supplier quote projections into the view the orders
// context reconciles against.
func (r *QuoteReader) QuotesByOrder(ctx context.Context, orderNo string) ([]orderstypes.QuoteView, error) {
	projections, err := r.quotes.QuotesByOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	views := make([]orderstypes.QuoteView, 0, len(projections))
	for _, p := range projections {
		quote := p.Entity
		view := orderstypes.QuoteView{
			QuoteNo:      quote.QuoteNo,
			SupplierName: quote.SupplierName,
			SubmittedAt:  quote.SubmittedAt,
		}
		for _, line := range quote.Lines {
			view.Lines = append(view.Lines, orderstypes.QuoteLineView{
				LineID:           line.LineID,
				OrderItemID:      line.OrderItemID,
				SKUID:            line.SKUID,
				SKUName:          line.SKUName,
				Quantity:         line.Quantity,
				UnitPrice:        line.UnitPrice,
				ExpectedDelivery: line.ExpectedDelivery,
				Remark:           line.Remark,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// ApprovalGateway exposes the approvals context to order selection commits.
type ApprovalGateway struct {
	approvals approvalsports.Service
}

// NewApprovalGateway adapts the approvals service to the orders ApprovalGateway port.
func NewApprovalGateway(approvals approvalsports.Service) *ApprovalGateway {
	return &ApprovalGateway{approvals: approvals}
}

// Evaluate runs the price-threshold check against the historical baseline.
func (g *ApprovalGateway) Evaluate(ctx context.Context, orderNo string, submittedTotal decimal.Decimal) (orderstypes.ThresholdDecision, error) {
	evaluation, err := g.approvals.Evaluate(ctx, orderNo, submittedTotal)
	if err != nil {
		return orderstypes.ThresholdDecision{}, err
	}
	return orderstypes.ThresholdDecision{
		SubmittedTotal:     evaluation.SubmittedTotal,
		HistoricalAvgTotal: evaluation.HistoricalAvgTotal,
		DeviationRatio:     evaluation.DeviationRatio,
		OverThreshold:      evaluation.OverThreshold,
	}, nil
}

// OpenApproval creates a pending approval record and returns its number.
func (g *ApprovalGateway) OpenApproval(ctx context.Context, orderNo, operator string, decision orderstypes.ThresholdDecision) (string, error) {
	saved, err := g.approvals.Open(ctx, approvalsports.OpenApprovalInput{
		OrderNo:     orderNo,
		RequestedBy: operator,
		Evaluation: approvalsports.Evaluation{
			SubmittedTotal:     decision.SubmittedTotal,
			HistoricalAvgTotal: decision.HistoricalAvgTotal,
			DeviationRatio:     decision.DeviationRatio,
			OverThreshold:      decision.OverThreshold,
		},
	})
	if err != nil {
		return "", err
	}
	return saved.Entity.ApprovalNo, nil
}

// OrderGate answers the quotes context's question of whether an order
// currently accepts supplier quotes.
type OrderGate struct {
	orders ordersports.Repository
}

// NewOrderGate adapts the orders repository to the quotes OrderGate port.
func NewOrderGate(orders ordersports.Repository) *OrderGate {
	return &OrderGate{orders: orders}
}

// CanAcceptQuotes succeeds only while the order sits in its inquiry window.
func (g *OrderGate) CanAcceptQuotes(ctx context.Context, orderNo string) error {
	projection, err := g.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if projection.Order.Status != domain.StatusInquiring {
		return fmt.Errorf("%w: order %s is %s", quotesapp.ErrInquiryNotOpen, orderNo, projection.Order.Status)
	}
	return nil
}

// OrderCommitter feeds resolved approvals back into the orders context. The
// target service is bound after construction because the two services
// reference each other.
type OrderCommitter struct {
	mu     sync.RWMutex
	orders ordersports.Service
}

// NewOrderCommitter builds an unbound committer.
func NewOrderCommitter() *OrderCommitter {
	return &OrderCommitter{}
}

// Bind sets the orders service the committer forwards to.
func (c *OrderCommitter) Bind(orders ordersports.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = orders
}

// ApplyApprovalOutcome forwards the approval decision to the orders service.
func (c *OrderCommitter) ApplyApprovalOutcome(ctx context.Context, orderNo, operator string, approved bool, remark string) error {
	c.mu.RLock()
	orders := c.orders
	c.mu.RUnlock()
	if orders == nil {
		return errors.New("order committer not bound")
	}
	_, err := orders.ApplyApprovalOutcome(ctx, orderNo, operator, approved, remark)
	return err
}

// LoggingNotifier records supplier notifications in the log. It stands in
// for an outbound supplier channel in deployments without one.
type LoggingNotifier struct {
	logger *slog.Logger
}

// NewLoggingNotifier builds a notifier writing to the given logger.
func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

// NotifySelected logs the winning quote numbers for the order.
func (n *LoggingNotifier) NotifySelected(ctx context.Context, orderNo string, quoteNos []int64) error {
	if n.logger != nil {
		n.logger.InfoContext(ctx, "suppliers notified of selection",
			slog.String("orderNo", orderNo),
			slog.Int("quotes", len(quoteNos)),
		)
	}
	return nil
}

var (
	_ ordersports.QuoteReader       = (*QuoteReader)(nil)
	_ ordersports.ApprovalGateway   = (*ApprovalGateway)(nil)
	_ ordersports.SupplierNotifier  = (*LoggingNotifier)(nil)
	_ quotesports.OrderGate         = (*OrderGate)(nil)
	_ approvalsports.OrderCommitter = (*OrderCommitter)(nil)
)
