package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	types "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	"github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

// UnselectedLinePolicy decides what happens to line items without a chosen
// quote when a selection is committed.
type UnselectedLinePolicy string

const (
	// PolicyCarry commits the selected items and carries unselected ones
	// forward as PENDING_QUOTE, visible as unfulfilled demand.
	PolicyCarry UnselectedLinePolicy = "carry"
	// PolicyRequireFull rejects any commit that leaves a line item without
	// a selection.
	PolicyRequireFull UnselectedLinePolicy = "require-full"
)

// ErrUnselectedLines signals a commit was rejected because line items remain
// without a chosen quote under the require-full policy.
var ErrUnselectedLines = errors.New("line items without a selection remain")

// ErrUnknownQuoteLine signals a selection referenced a quote line that was
// never submitted for the order.
var ErrUnknownQuoteLine = errors.New("selection references an unknown quote line")

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo      ports.Repository
	quotes    ports.QuoteReader
	approvals ports.ApprovalGateway
	notifier  ports.SupplierNotifier
	session   *SelectionSession
	policy    UnselectedLinePolicy
	now       func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithUnselectedLinePolicy sets the commit policy for unselected line items.
func WithUnselectedLinePolicy(policy UnselectedLinePolicy) Option {
	return func(s *Service) { s.policy = policy }
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, quotes ports.QuoteReader, approvals ports.ApprovalGateway, notifier ports.SupplierNotifier, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		quotes:    quotes,
		approvals: approvals,
		notifier:  notifier,
		session:   NewSelectionSession(),
		policy:    PolicyCarry,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDraft opens a new draft order with a server-assigned order number.
func (s *Service) CreateDraft(ctx context.Context, input types.CreateDraftInput) (*types.OrderProjection, error) {
	orderNo, err := s.repo.NextOrderNo(ctx, s.now())
	if err != nil {
		return nil, err
	}
	order, err := domain.NewPurchaseOrder(orderNo, input.StoreName, input.CreatorName, input.ExpectedDeliveryDate, input.Remark, input.Items)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, order)
}

// UpdateDraftQuantities applies a batch of quantity edits to a draft order.
func (s *Service) UpdateDraftQuantities(ctx context.Context, orderNo string, edits []types.QuantityEdit) (*types.OrderProjection, error) {
	projection, err := s.repo.Mutate(ctx, orderNo, func(order *domain.PurchaseOrder) error {
		for _, edit := range edits {
			if err := order.UpdateQuantity(edit.ItemID, edit.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// SubmitDraft moves a draft into the first approval gate.
func (s *Service) SubmitDraft(ctx context.Context, orderNo, operator string) (*types.OrderProjection, error) {
	return s.transitionOrder(ctx, orderNo, operator, "", func(order *domain.PurchaseOrder) error {
		return order.Submit()
	})
}

// ResolveDraftApproval records the first-gate approval decision.
func (s *Service) ResolveDraftApproval(ctx context.Context, orderNo, operator string, approved bool, remark string) (*types.OrderProjection, error) {
	return s.transitionOrder(ctx, orderNo, operator, remark, func(order *domain.PurchaseOrder) error {
		if approved {
			return order.ApproveDraft()
		}
		return order.RejectDraft()
	})
}

// SendInquiry opens the supplier inquiry window with a response deadline.
func (s *Service) SendInquiry(ctx context.Context, orderNo, operator string, deadline time.Time) (*types.OrderProjection, error) {
	if !deadline.After(s.now()) {
		return nil, mapError(fmt.Errorf("%w: %s", domain.ErrInquiryDeadline, deadline))
	}
	return s.transitionOrder(ctx, orderNo, operator, "", func(order *domain.PurchaseOrder) error {
		return order.SendInquiry(deadline)
	})
}

// CompleteInquiry closes the inquiry window once supplier quotes are in.
func (s *Service) CompleteInquiry(ctx context.Context, orderNo, operator string) (*types.OrderProjection, error) {
	return s.transitionOrder(ctx, orderNo, operator, "", func(order *domain.PurchaseOrder) error {
		return order.CompleteInquiry()
	})
}

// GetOrderDetail loads an order together with its reconciled quote matrix.
func (s *Service) GetOrderDetail(ctx context.Context, orderNo string) (*ports.OrderDetail, error) {
	projection, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	quotes, err := s.quotes.QuotesByOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	return &ports.OrderDetail{
		Projection: projection,
		Lines:      Reconcile(projection.Order.Items, quotes),
	}, nil
}

// ListOrders returns projections matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter types.ListFilter) ([]*types.OrderProjection, error) {
	return s.repo.List(ctx, filter)
}

// GetTimeline projects the order's status log into a display timeline.
func (s *Service) GetTimeline(ctx context.Context, orderNo string) ([]domain.TimelineEntry, error) {
	if _, err := s.repo.GetByOrderNo(ctx, orderNo); err != nil {
		return nil, err
	}
	entries, err := s.repo.StatusLog(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	return domain.BuildTimeline(entries), nil
}

// RecordChoice notes a provisional supplier choice for one line item. The
// choice stays local until SubmitSelections commits the batch.
func (s *Service) RecordChoice(ctx context.Context, orderNo string, pair types.SelectionPair) error {
	projection, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	order := projection.Order
	if order.Status != domain.StatusInquiring && order.Status != domain.StatusQuoted {
		return mapError(fmt.Errorf("%w: order is %s", domain.ErrInvalidTransition, order.Status))
	}
	item := order.Item(pair.OrderItemID)
	if item == nil {
		return mapError(fmt.Errorf("%w: id %d", domain.ErrItemNotFound, pair.OrderItemID))
	}
	if item.Status != domain.ItemPendingQuote {
		return mapError(fmt.Errorf("%w: item %d is %s", domain.ErrAlreadySelected, item.ID, item.Status))
	}
	quotes, err := s.quotes.QuotesByOrder(ctx, orderNo)
	if err != nil {
		return err
	}
	sel, err := buildSelection(quotes, pair, item.Quantity)
	if err != nil {
		return err
	}
	s.session.Record(orderNo, pair.OrderItemID, sel)
	return nil
}

// ClearChoices forgets every provisional choice for the order.
func (s *Service) ClearChoices(orderNo string) {
	s.session.Clear(orderNo)
}

// SubmitSelections commits supplier choices atomically: either every pair is
// bound and the order advances, or nothing changes. When the submitted total
// deviates past the configured threshold the order parks in
// PRICE_PENDING_APPROVAL behind a fresh approval record instead of ORDERED.
func (s *Service) SubmitSelections(ctx context.Context, input types.SubmitSelectionsInput) (*types.SelectionOutcome, error) {
	// A pair without a quote number is a cleared choice, dropped rather than
	// treated as an unselect.
	pairs := make([]types.SelectionPair, 0, len(input.Pairs))
	for _, pair := range input.Pairs {
		if pair.QuoteNo == 0 {
			continue
		}
		pairs = append(pairs, pair)
	}
	if len(pairs) == 0 {
		for itemID, sel := range s.session.Snapshot(input.OrderNo) {
			pairs = append(pairs, types.SelectionPair{OrderItemID: itemID, QuoteNo: sel.QuoteNo, QuoteLineID: sel.QuoteLineID})
		}
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrNothingSelected)
	}
	quotes, err := s.quotes.QuotesByOrder(ctx, input.OrderNo)
	if err != nil {
		return nil, err
	}

	var from domain.OrderStatus
	var decision types.ThresholdDecision
	var approvalNo string
	projection, err := s.repo.Mutate(ctx, input.OrderNo, func(order *domain.PurchaseOrder) error {
		from = order.Status
		selections := make(map[int64]domain.Selection, len(pairs))
		for _, pair := range pairs {
			item := order.Item(pair.OrderItemID)
			if item == nil {
				return fmt.Errorf("%w: id %d", domain.ErrItemNotFound, pair.OrderItemID)
			}
			sel, err := buildSelection(quotes, pair, item.Quantity)
			if err != nil {
				return err
			}
			selections[pair.OrderItemID] = sel
		}
		if err := order.ApplySelections(selections); err != nil {
			return err
		}
		if s.policy == PolicyRequireFull {
			if pending := order.PendingItems(); len(pending) > 0 {
				return fmt.Errorf("%w: %d of %d", ErrUnselectedLines, len(pending), len(order.Items))
			}
		}
		d, err := s.approvals.Evaluate(ctx, input.OrderNo, order.SelectedTotal())
		if err != nil {
			return err
		}
		decision = d
		if decision.OverThreshold {
			if err := order.BeginPriceApproval(); err != nil {
				return err
			}
			// The approval record is opened inside the mutation so a failed
			// open rolls the order back instead of stranding it parked with
			// nothing to resolve.
			approvalNo, err = s.approvals.OpenApproval(ctx, input.OrderNo, input.Operator, decision)
			return err
		}
		return order.Commit()
	})
	if err != nil {
		if errors.Is(err, ErrUnselectedLines) || errors.Is(err, ErrUnknownQuoteLine) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, mapError(err)
	}

	s.session.Clear(input.OrderNo)
	outcome := &types.SelectionOutcome{Projection: projection, Decision: decision, ApprovalNo: approvalNo}
	if err := s.appendLog(ctx, input.OrderNo, from, projection.Order.Status, input.Operator, ""); err != nil {
		return nil, err
	}
	if !decision.OverThreshold {
		s.notifySelected(ctx, projection.Order)
	}
	return outcome, nil
}

// ApplyApprovalOutcome moves a price-parked order forward once its approval
// record resolves. Approval commits the selection; rejection terminates the
// cycle.
func (s *Service) ApplyApprovalOutcome(ctx context.Context, orderNo, operator string, approved bool, remark string) (*types.OrderProjection, error) {
	projection, err := s.transitionOrder(ctx, orderNo, operator, remark, func(order *domain.PurchaseOrder) error {
		if approved {
			return order.Commit()
		}
		return order.RejectPrice()
	})
	if err != nil {
		return nil, err
	}
	if approved {
		s.notifySelected(ctx, projection.Order)
	}
	return projection, nil
}

// ConfirmArrival marks the referenced line items as arrived. A partial
// confirmation leaves the order ORDERED; the final one advances it to
// ARRIVED and closes the lifecycle.
func (s *Service) ConfirmArrival(ctx context.Context, input types.ConfirmArrivalInput) (*types.OrderProjection, error) {
	var from domain.OrderStatus
	projection, err := s.repo.Mutate(ctx, input.OrderNo, func(order *domain.PurchaseOrder) error {
		from = order.Status
		return order.ConfirmArrival(input.QuoteRefs, s.now())
	})
	if err != nil {
		return nil, mapError(err)
	}
	if projection.Order.Status != from {
		if err := s.appendLog(ctx, input.OrderNo, from, projection.Order.Status, input.Operator, ""); err != nil {
			return nil, err
		}
	}
	return projection, nil
}

func (s *Service) transitionOrder(ctx context.Context, orderNo, operator, remark string, fn func(order *domain.PurchaseOrder) error) (*types.OrderProjection, error) {
	var from domain.OrderStatus
	projection, err := s.repo.Mutate(ctx, orderNo, func(order *domain.PurchaseOrder) error {
		from = order.Status
		return fn(order)
	})
	if err != nil {
		return nil, mapError(err)
	}
	if projection.Order.Status != from {
		if err := s.appendLog(ctx, orderNo, from, projection.Order.Status, operator, remark); err != nil {
			return nil, err
		}
	}
	return projection, nil
}

func (s *Service) appendLog(ctx context.Context, orderNo string, from, to domain.OrderStatus, operator, remark string) error {
	return s.repo.AppendStatusLog(ctx, orderNo, domain.StatusLogEntry{
		From:     from,
		To:       to,
		Operator: operator,
		Remark:   remark,
		At:       s.now(),
	})
}

func (s *Service) notifySelected(ctx context.Context, order *domain.PurchaseOrder) {
	seen := make(map[int64]struct{})
	var quoteNos []int64
	for _, item := range order.Items {
		if item.Assigned() {
			if _, dup := seen[item.QuoteNo]; dup {
				continue
			}
			seen[item.QuoteNo] = struct{}{}
			quoteNos = append(quoteNos, item.QuoteNo)
		}
	}
	if len(quoteNos) == 0 || s.notifier == nil {
		return
	}
	// Notification is advisory; a delivery failure never rolls the commit back.
	_ = s.notifier.NotifySelected(ctx, order.OrderNo, quoteNos)
}

func buildSelection(quotes []types.QuoteView, pair types.SelectionPair, quantity int64) (domain.Selection, error) {
	for _, quote := range quotes {
		if quote.QuoteNo != pair.QuoteNo {
			continue
		}
		for _, line := range quote.Lines {
			if line.LineID != pair.QuoteLineID {
				continue
			}
			return domain.Selection{
				QuoteNo:          quote.QuoteNo,
				QuoteLineID:      line.LineID,
				SupplierName:     quote.SupplierName,
				UnitPrice:        line.UnitPrice,
				TotalPrice:       line.UnitPrice.Mul(decimal.NewFromInt(quantity)),
				ExpectedDelivery: line.ExpectedDelivery,
			}, nil
		}
	}
	return domain.Selection{}, fmt.Errorf("%w: quote %d line %d", ErrUnknownQuoteLine, pair.QuoteNo, pair.QuoteLineID)
}

var _ ports.Service = (*Service)(nil)
