package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	approvalsmemory "github.com/partsflow/procurement-api/internal/domains/approvals/adapters/memory"
	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	"github.com/partsflow/procurement-api/internal/domains/approvals/ports"
)

type outcomeCall struct {
	orderNo  string
	operator string
	approved bool
	remark   string
}

type stubCommitter struct {
	calls []outcomeCall
	err   error
}

func (c *stubCommitter) ApplyApprovalOutcome(_ context.Context, orderNo, operator string, approved bool, remark string) error {
	c.calls = append(c.calls, outcomeCall{orderNo: orderNo, operator: operator, approved: approved, remark: remark})
	return c.err
}

func newApprovalsFixture(committer ports.OrderCommitter) (*Service, *approvalsmemory.Pricing) {
	pricing := approvalsmemory.NewPricing()
	now := time.Date(2026, 1, 17, 8, 0, 0, 0, time.UTC)
	svc := NewService(
		approvalsmemory.NewRepository(),
		pricing,
		committer,
		domain.ThresholdPolicy{Ratio: decimal.RequireFromString("0.15")},
		WithClock(func() time.Time { return now }),
	)
	return svc, pricing
}

func TestEvaluate_UsesHistoricalBaseline(t *testing.T) {
	svc, pricing := newApprovalsFixture(nil)
	pricing.SetBaseline("PO1", decimal.NewFromInt(100))

	eval, err := svc.Evaluate(context.Background(), "PO1", decimal.NewFromInt(120))
	require.NoError(t, err)
	require.True(t, eval.OverThreshold)
	require.True(t, eval.DeviationRatio.Equal(decimal.RequireFromString("0.2")))
	require.True(t, eval.HistoricalAvgTotal.Equal(decimal.NewFromInt(100)))
}

func TestEvaluate_UnknownOrderHasNoBaseline(t *testing.T) {
	svc, _ := newApprovalsFixture(nil)

	eval, err := svc.Evaluate(context.Background(), "PO-unknown", decimal.NewFromInt(9999))
	require.NoError(t, err)
	require.False(t, eval.OverThreshold)
	require.True(t, eval.HistoricalAvgTotal.IsZero())
}

func TestResolve_FeedsOutcomeToCommitter(t *testing.T) {
	committer := &stubCommitter{}
	svc, _ := newApprovalsFixture(committer)

	opened, err := svc.Open(context.Background(), ports.OpenApprovalInput{
		OrderNo:     "PO1",
		RequestedBy: "alex",
		Evaluation: ports.Evaluation{
			SubmittedTotal:     decimal.NewFromInt(120),
			HistoricalAvgTotal: decimal.NewFromInt(100),
			DeviationRatio:     decimal.RequireFromString("0.2"),
			OverThreshold:      true,
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.ApprovalPending, opened.Entity.Status)
	require.NotEmpty(t, opened.Entity.ApprovalNo)

	resolved, err := svc.Resolve(context.Background(), ports.ResolveInput{
		ApprovalNo: opened.Entity.ApprovalNo,
		Approved:   true,
		ResolvedBy: "kim",
		Remark:     "within tolerance",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ApprovalApproved, resolved.Entity.Status)
	require.Len(t, committer.calls, 1)
	require.Equal(t, outcomeCall{orderNo: "PO1", operator: "kim", approved: true, remark: "within tolerance"}, committer.calls[0])
}

func TestResolve_SecondAttemptFails(t *testing.T) {
	committer := &stubCommitter{}
	svc, _ := newApprovalsFixture(committer)

	opened, err := svc.Open(context.Background(), ports.OpenApprovalInput{OrderNo: "PO1", RequestedBy: "alex"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ports.ResolveInput{ApprovalNo: opened.Entity.ApprovalNo, Approved: false, ResolvedBy: "kim"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ports.ResolveInput{ApprovalNo: opened.Entity.ApprovalNo, Approved: true, ResolvedBy: "kim"})
	require.ErrorIs(t, err, ErrAlreadyResolved)
	require.True(t, IsAlreadyResolved(err))
	require.Len(t, committer.calls, 1)
}

func TestResolve_UnknownApproval(t *testing.T) {
	svc, _ := newApprovalsFixture(nil)
	_, err := svc.Resolve(context.Background(), ports.ResolveInput{ApprovalNo: "missing", Approved: true, ResolvedBy: "kim"})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListPending_OmitsResolved(t *testing.T) {
	svc, _ := newApprovalsFixture(&stubCommitter{})

	first, err := svc.Open(context.Background(), ports.OpenApprovalInput{OrderNo: "PO1", RequestedBy: "alex"})
	require.NoError(t, err)
	second, err := svc.Open(context.Background(), ports.OpenApprovalInput{OrderNo: "PO2", RequestedBy: "alex"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ports.ResolveInput{ApprovalNo: first.Entity.ApprovalNo, Approved: true, ResolvedBy: "kim"})
	require.NoError(t, err)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, second.Entity.ApprovalNo, pending[0].Entity.ApprovalNo)
}
