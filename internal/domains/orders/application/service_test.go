package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordersmemory "github.com/partsflow/procurement-api/internal/domains/orders/adapters/memory"
	"github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

var testClock = func() time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

type stubQuotes struct {
	quotes []types.QuoteView
}

func (s *stubQuotes) QuotesByOrder(context.Context, string) ([]types.QuoteView, error) {
	return s.quotes, nil
}

type stubApprovals struct {
	over    bool
	openErr error
	opened  []types.ThresholdDecision
}

func (s *stubApprovals) Evaluate(_ context.Context, _ string, submittedTotal decimal.Decimal) (types.ThresholdDecision, error) {
	return types.ThresholdDecision{
		SubmittedTotal:     submittedTotal,
		HistoricalAvgTotal: decimal.NewFromInt(100),
		DeviationRatio:     decimal.NewFromFloat(0.2),
		OverThreshold:      s.over,
	}, nil
}

func (s *stubApprovals) OpenApproval(_ context.Context, _, _ string, decision types.ThresholdDecision) (string, error) {
	if s.openErr != nil {
		return "", s.openErr
	}
	s.opened = append(s.opened, decision)
	return "AP-1", nil
}

type notifyCall struct {
	orderNo  string
	quoteNos []int64
}

type recordingNotifier struct {
	calls []notifyCall
}

func (n *recordingNotifier) NotifySelected(_ context.Context, orderNo string, quoteNos []int64) error {
	n.calls = append(n.calls, notifyCall{orderNo: orderNo, quoteNos: quoteNos})
	return nil
}

func fixtureQuotes() []types.QuoteView {
	return []types.QuoteView{
		{
			QuoteNo:      7,
			SupplierName: "ACME Parts",
			Lines: []types.QuoteLineView{
				{LineID: 71, OrderItemID: 1, SKUID: 101, SKUName: "Brake Pad", Quantity: 4, UnitPrice: decimal.RequireFromString("25.50")},
				{LineID: 72, OrderItemID: 2, SKUID: 202, SKUName: "Oil Filter", Quantity: 2, UnitPrice: decimal.RequireFromString("8")},
			},
		},
		{
			QuoteNo:      8,
			SupplierName: "Bolt Supply",
			Lines: []types.QuoteLineView{
				{LineID: 81, OrderItemID: 2, SKUID: 202, SKUName: "Oil Filter", Quantity: 2, UnitPrice: decimal.RequireFromString("7.50")},
			},
		},
	}
}

type fixture struct {
	repo      *ordersmemory.Repository
	approvals *stubApprovals
	notifier  *recordingNotifier
	service   *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:      ordersmemory.NewRepositoryWithClock(testClock),
		approvals: &stubApprovals{},
		notifier:  &recordingNotifier{},
	}
	opts = append([]Option{WithClock(testClock)}, opts...)
	f.service = NewService(f.repo, &stubQuotes{quotes: fixtureQuotes()}, f.approvals, f.notifier, opts...)
	return f
}

func (f *fixture) createDraft(t *testing.T) string {
	t.Helper()
	projection, err := f.service.CreateDraft(context.Background(), types.CreateDraftInput{
		StoreName:            "Downtown Garage",
		CreatorName:          "alex",
		ExpectedDeliveryDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []domain.LineItemSpec{
			{SKUID: 101, SKUName: "Brake Pad", Brand: "Brembo", Quantity: 4},
			{SKUID: 202, SKUName: "Oil Filter", Brand: "Mann", Quantity: 2},
		},
	})
	require.NoError(t, err)
	return projection.Order.OrderNo
}

func (f *fixture) createQuotedOrder(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	orderNo := f.createDraft(t)
	_, err := f.service.SubmitDraft(ctx, orderNo, "alex")
	require.NoError(t, err)
	_, err = f.service.ResolveDraftApproval(ctx, orderNo, "kim", true, "")
	require.NoError(t, err)
	_, err = f.service.SendInquiry(ctx, orderNo, "alex", testClock().Add(48*time.Hour))
	require.NoError(t, err)
	_, err = f.service.CompleteInquiry(ctx, orderNo, "alex")
	require.NoError(t, err)
	return orderNo
}

func TestCreateDraft_AssignsSequentialOrderNos(t *testing.T) {
	f := newFixture(t)
	first := f.createDraft(t)
	second := f.createDraft(t)
	require.Equal(t, "PO20260115001", first)
	require.Equal(t, "PO20260115002", second)
}

func TestCreateDraft_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CreateDraft(context.Background(), types.CreateDraftInput{StoreName: "x", CreatorName: "alex"})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestUpdateDraftQuantities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createDraft(t)

	updated, err := f.service.UpdateDraftQuantities(ctx, orderNo, []types.QuantityEdit{{ItemID: 1, Quantity: 6}})
	require.NoError(t, err)
	require.Equal(t, int64(6), updated.Order.Item(1).Quantity)

	_, err = f.service.SubmitDraft(ctx, orderNo, "alex")
	require.NoError(t, err)
	_, err = f.service.UpdateDraftQuantities(ctx, orderNo, []types.QuantityEdit{{ItemID: 1, Quantity: 8}})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, domain.ErrQuantityLocked)
}

func TestSendInquiry_RejectsPastDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createDraft(t)
	_, err := f.service.SubmitDraft(ctx, orderNo, "alex")
	require.NoError(t, err)
	_, err = f.service.ResolveDraftApproval(ctx, orderNo, "kim", true, "")
	require.NoError(t, err)

	_, err = f.service.SendInquiry(ctx, orderNo, "alex", testClock().Add(-time.Hour))
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, domain.ErrInquiryDeadline)
}

func TestResolveDraftApproval_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createDraft(t)
	_, err := f.service.SubmitDraft(ctx, orderNo, "alex")
	require.NoError(t, err)

	rejected, err := f.service.ResolveDraftApproval(ctx, orderNo, "kim", false, "budget freeze")
	require.NoError(t, err)
	require.Equal(t, domain.StatusApprovalRejected, rejected.Order.Status)

	entries, err := f.repo.StatusLog(ctx, orderNo)
	require.NoError(t, err)
	require.Equal(t, "budget freeze", entries[len(entries)-1].Remark)
}

func TestSubmitSelections_CommitsUnderThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	outcome, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs: []types.SelectionPair{
			{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71},
			{OrderItemID: 2, QuoteNo: 8, QuoteLineID: 81},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, outcome.Projection.Order.Status)
	require.Empty(t, outcome.ApprovalNo)
	// 4 x 25.50 + 2 x 7.50
	require.True(t, outcome.Decision.SubmittedTotal.Equal(decimal.RequireFromString("117")))

	item := outcome.Projection.Order.Item(1)
	require.Equal(t, domain.ItemOrdered, item.Status)
	require.Equal(t, "ACME Parts", item.SupplierName)
	require.True(t, item.TotalPrice.Equal(decimal.RequireFromString("102")))

	require.Len(t, f.notifier.calls, 1)
	require.Equal(t, []int64{7, 8}, f.notifier.calls[0].quoteNos)
	require.Empty(t, f.approvals.opened)

	timeline, err := f.service.GetTimeline(ctx, orderNo)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, timeline[len(timeline)-1].Status)
}

func TestSubmitSelections_OverThresholdParksOrder(t *testing.T) {
	f := newFixture(t)
	f.approvals.over = true
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	outcome, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71}},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPricePendingApproval, outcome.Projection.Order.Status)
	require.Equal(t, "AP-1", outcome.ApprovalNo)
	require.Len(t, f.approvals.opened, 1)
	require.Empty(t, f.notifier.calls)

	// Approval releases the commit and notifies the winners.
	released, err := f.service.ApplyApprovalOutcome(ctx, orderNo, "kim", true, "within tolerance")
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, released.Order.Status)
	require.Len(t, f.notifier.calls, 1)
	require.Equal(t, []int64{7}, f.notifier.calls[0].quoteNos)
}

func TestSubmitSelections_FailedApprovalOpenRollsBack(t *testing.T) {
	f := newFixture(t)
	f.approvals.over = true
	f.approvals.openErr = errors.New("approval store unavailable")
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	_, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71}},
	})
	require.ErrorContains(t, err, "approval store unavailable")

	// The order never parks without a record to resolve it.
	stored, err := f.repo.GetByOrderNo(ctx, orderNo)
	require.NoError(t, err)
	require.Equal(t, domain.StatusQuoted, stored.Order.Status)
	require.Equal(t, domain.ItemPendingQuote, stored.Order.Item(1).Status)

	// Once the store recovers, the same submit goes through.
	f.approvals.openErr = nil
	outcome, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71}},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPricePendingApproval, outcome.Projection.Order.Status)
	require.Equal(t, "AP-1", outcome.ApprovalNo)
}

func TestApplyApprovalOutcome_RejectTerminatesCycle(t *testing.T) {
	f := newFixture(t)
	f.approvals.over = true
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	_, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71}},
	})
	require.NoError(t, err)

	rejected, err := f.service.ApplyApprovalOutcome(ctx, orderNo, "kim", false, "too expensive")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPriceApprovalRejected, rejected.Order.Status)
	require.Empty(t, f.notifier.calls)
}

func TestSubmitSelections_SessionFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	err := f.service.RecordChoice(ctx, orderNo, types.SelectionPair{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71})
	require.NoError(t, err)

	outcome, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{OrderNo: orderNo, Operator: "alex"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, outcome.Projection.Order.Status)
	require.Equal(t, domain.ItemOrdered, outcome.Projection.Order.Item(1).Status)
	require.Equal(t, domain.ItemPendingQuote, outcome.Projection.Order.Item(2).Status)

	// The commit consumed the session; a second submit has nothing left.
	_, err = f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{OrderNo: orderNo, Operator: "alex"})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, domain.ErrNothingSelected)
}

func TestRecordChoice_RejectsWrongStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createDraft(t)

	err := f.service.RecordChoice(ctx, orderNo, types.SelectionPair{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71})
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmitSelections_RequireFullPolicy(t *testing.T) {
	f := newFixture(t, WithUnselectedLinePolicy(PolicyRequireFull))
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	_, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71}},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrUnselectedLines)

	// The rejected commit left the stored aggregate untouched.
	stored, err := f.repo.GetByOrderNo(ctx, orderNo)
	require.NoError(t, err)
	require.Equal(t, domain.StatusQuoted, stored.Order.Status)
	require.Equal(t, domain.ItemPendingQuote, stored.Order.Item(1).Status)
}

func TestSubmitSelections_UnknownQuoteLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	_, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1, QuoteNo: 99, QuoteLineID: 1}},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrUnknownQuoteLine)
}

func TestSubmitSelections_DropsClearedChoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)

	// Item 2 carries no quote number: a cleared choice, not an unselect.
	outcome, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs: []types.SelectionPair{
			{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71},
			{OrderItemID: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, outcome.Projection.Order.Status)
	require.Equal(t, domain.ItemOrdered, outcome.Projection.Order.Item(1).Status)
	require.Equal(t, domain.ItemPendingQuote, outcome.Projection.Order.Item(2).Status)

	// Nothing remains after filtering: same failure as an empty submit.
	other := f.createQuotedOrder(t)
	_, err = f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  other,
		Operator: "alex",
		Pairs:    []types.SelectionPair{{OrderItemID: 1}, {OrderItemID: 2}},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, domain.ErrNothingSelected)
}

func TestConfirmArrival_PartialThenFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createQuotedOrder(t)
	_, err := f.service.SubmitSelections(ctx, types.SubmitSelectionsInput{
		OrderNo:  orderNo,
		Operator: "alex",
		Pairs: []types.SelectionPair{
			{OrderItemID: 1, QuoteNo: 7, QuoteLineID: 71},
			{OrderItemID: 2, QuoteNo: 8, QuoteLineID: 81},
		},
	})
	require.NoError(t, err)
	logBefore, err := f.repo.StatusLog(ctx, orderNo)
	require.NoError(t, err)

	partial, err := f.service.ConfirmArrival(ctx, types.ConfirmArrivalInput{OrderNo: orderNo, QuoteRefs: []int64{7}, Operator: "alex"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, partial.Order.Status)

	// A partial arrival is not an order transition, so no log entry.
	logAfterPartial, err := f.repo.StatusLog(ctx, orderNo)
	require.NoError(t, err)
	require.Len(t, logAfterPartial, len(logBefore))

	full, err := f.service.ConfirmArrival(ctx, types.ConfirmArrivalInput{OrderNo: orderNo, QuoteRefs: []int64{8}, Operator: "alex"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusArrived, full.Order.Status)

	logAfterFull, err := f.repo.StatusLog(ctx, orderNo)
	require.NoError(t, err)
	require.Len(t, logAfterFull, len(logBefore)+1)
	require.Equal(t, domain.StatusArrived, logAfterFull[len(logAfterFull)-1].To)
}

func TestGetOrderDetail_IncludesReconciledLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderNo := f.createDraft(t)

	detail, err := f.service.GetOrderDetail(ctx, orderNo)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)
	require.Len(t, detail.Lines[0].Quotes, 1)
	require.Len(t, detail.Lines[1].Quotes, 2)
}

func TestListOrders_FiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draftNo := f.createDraft(t)
	submittedNo := f.createDraft(t)
	_, err := f.service.SubmitDraft(ctx, submittedNo, "alex")
	require.NoError(t, err)

	drafts, err := f.service.ListOrders(ctx, types.ListFilter{Statuses: []domain.OrderStatus{domain.StatusDraft}})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Equal(t, draftNo, drafts[0].Order.OrderNo)
}
