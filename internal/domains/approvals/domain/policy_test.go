package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_SignedRatio(t *testing.T) {
	policy := ThresholdPolicy{Ratio: decimal.RequireFromString("0.15")}

	over := policy.Evaluate(decimal.NewFromInt(120), decimal.NewFromInt(100))
	require.True(t, over.OverThreshold)
	require.True(t, over.Ratio.Equal(decimal.RequireFromString("0.2")))

	under := policy.Evaluate(decimal.NewFromInt(110), decimal.NewFromInt(100))
	require.False(t, under.OverThreshold)

	// A cheaper-than-history total never triggers approval, even when the
	// absolute deviation exceeds the ratio.
	cheaper := policy.Evaluate(decimal.NewFromInt(50), decimal.NewFromInt(100))
	require.False(t, cheaper.OverThreshold)
	require.True(t, cheaper.Ratio.IsNegative())
}

func TestEvaluate_ExactThresholdPasses(t *testing.T) {
	policy := ThresholdPolicy{Ratio: decimal.RequireFromString("0.15")}
	dev := policy.Evaluate(decimal.NewFromInt(115), decimal.NewFromInt(100))
	require.False(t, dev.OverThreshold)
	require.True(t, dev.Ratio.Equal(decimal.RequireFromString("0.15")))
}

func TestEvaluate_NoBaselinePasses(t *testing.T) {
	policy := ThresholdPolicy{Ratio: decimal.RequireFromString("0.15")}
	dev := policy.Evaluate(decimal.NewFromInt(9999), decimal.Zero)
	require.False(t, dev.OverThreshold)
	require.True(t, dev.Ratio.IsZero())
}

func TestApprovalRecord_ResolvesOnce(t *testing.T) {
	at := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	record := NewApprovalRecord("AP-1", "PO1", "alex",
		decimal.NewFromInt(120), decimal.NewFromInt(100), decimal.RequireFromString("0.2"), at)
	require.Equal(t, ApprovalPending, record.Status)
	require.Nil(t, record.ResolvedAt)

	require.NoError(t, record.Approve("kim", "within tolerance", at.Add(time.Hour)))
	require.Equal(t, ApprovalApproved, record.Status)
	require.Equal(t, "kim", record.ResolvedBy)
	require.NotNil(t, record.ResolvedAt)

	require.ErrorIs(t, record.Approve("kim", "", at.Add(2*time.Hour)), ErrAlreadyResolved)
	require.ErrorIs(t, record.Reject("kim", "", at.Add(2*time.Hour)), ErrAlreadyResolved)
}

func TestApprovalRecord_Reject(t *testing.T) {
	at := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	record := NewApprovalRecord("AP-2", "PO1", "alex",
		decimal.NewFromInt(120), decimal.NewFromInt(100), decimal.RequireFromString("0.2"), at)

	require.NoError(t, record.Reject("kim", "too expensive", at))
	require.Equal(t, ApprovalRejected, record.Status)
	require.Equal(t, "too expensive", record.Remark)
}
