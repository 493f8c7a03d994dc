package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	quotesmemory "github.com/partsflow/procurement-api/internal/domains/quotes/adapters/memory"
	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	"github.com/partsflow/procurement-api/internal/domains/quotes/ports"
)

type fakeGate struct {
	err error
}

func (g *fakeGate) CanAcceptQuotes(context.Context, string) error {
	return g.err
}

func newTestService(gate *fakeGate) (*Service, *time.Time) {
	now := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)
	svc := NewService(quotesmemory.NewRepository(), gate, WithClock(func() time.Time { return now }))
	return svc, &now
}

func openTestInquiry(t *testing.T, svc *Service, deadline time.Time) {
	t.Helper()
	_, err := svc.OpenInquiry(context.Background(), ports.OpenInquiryInput{
		OrderNo:     "PO20260115001",
		SupplierIDs: []int64{1, 2},
		SKUIDs:      []int64{101, 202},
		Deadline:    deadline,
	})
	require.NoError(t, err)
}

func quoteInput(supplierID int64, name string) ports.SubmitQuoteInput {
	return ports.SubmitQuoteInput{
		OrderNo:      "PO20260115001",
		SupplierID:   supplierID,
		SupplierName: name,
		Lines: []ports.QuoteLineInput{
			{OrderItemID: 1, SKUID: 101, SKUName: "Brake Pad", Quantity: 4, UnitPrice: decimal.RequireFromString("25.50")},
			{SKUID: 202, SKUName: "Oil Filter", Quantity: 2, UnitPrice: decimal.RequireFromString("8")},
		},
	}
}

func TestOpenInquiry_RejectsSecondOpenRound(t *testing.T) {
	svc, now := newTestService(&fakeGate{})
	openTestInquiry(t, svc, now.Add(48*time.Hour))

	_, err := svc.OpenInquiry(context.Background(), ports.OpenInquiryInput{
		OrderNo:     "PO20260115001",
		SupplierIDs: []int64{3},
		Deadline:    now.Add(48 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrAlreadyInquired)
}

func TestOpenInquiry_RequiresSuppliers(t *testing.T) {
	svc, now := newTestService(&fakeGate{})
	_, err := svc.OpenInquiry(context.Background(), ports.OpenInquiryInput{
		OrderNo:  "PO20260115001",
		Deadline: now.Add(48 * time.Hour),
	})
	require.ErrorIs(t, err, ErrInvalidQuote)
	require.ErrorIs(t, err, domain.ErrNoSuppliers)
}

func TestSubmitQuote_AssignsQuoteNoAndLineIDs(t *testing.T) {
	svc, now := newTestService(&fakeGate{})
	openTestInquiry(t, svc, now.Add(48*time.Hour))

	saved, err := svc.SubmitQuote(context.Background(), quoteInput(1, "ACME Parts"))
	require.NoError(t, err)
	require.NotZero(t, saved.Entity.QuoteNo)
	require.Len(t, saved.Entity.Lines, 2)
	require.NotZero(t, saved.Entity.Lines[0].LineID)
	require.NotEqual(t, saved.Entity.Lines[0].LineID, saved.Entity.Lines[1].LineID)

	second, err := svc.SubmitQuote(context.Background(), quoteInput(2, "Bolt Supply"))
	require.NoError(t, err)
	require.NotEqual(t, saved.Entity.QuoteNo, second.Entity.QuoteNo)
}

func TestSubmitQuote_ResubmissionKeepsQuoteNo(t *testing.T) {
	svc, now := newTestService(&fakeGate{})
	openTestInquiry(t, svc, now.Add(48*time.Hour))

	first, err := svc.SubmitQuote(context.Background(), quoteInput(1, "ACME Parts"))
	require.NoError(t, err)

	revised := ports.SubmitQuoteInput{
		OrderNo:      "PO20260115001",
		SupplierID:   1,
		SupplierName: "ACME Parts",
		Lines: []ports.QuoteLineInput{
			{OrderItemID: 1, SKUID: 101, SKUName: "Brake Pad", Quantity: 4, UnitPrice: decimal.RequireFromString("24.00")},
		},
	}
	resubmitted, err := svc.SubmitQuote(context.Background(), revised)
	require.NoError(t, err)
	require.Equal(t, first.Entity.QuoteNo, resubmitted.Entity.QuoteNo)
	require.Len(t, resubmitted.Entity.Lines, 1)
	require.True(t, resubmitted.Entity.Lines[0].UnitPrice.Equal(decimal.RequireFromString("24.00")))

	listed, err := svc.QuotesByOrder(context.Background(), "PO20260115001")
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestSubmitQuote_NoOpenInquiry(t *testing.T) {
	svc, _ := newTestService(&fakeGate{})
	_, err := svc.SubmitQuote(context.Background(), quoteInput(1, "ACME Parts"))
	require.ErrorIs(t, err, ErrInquiryNotOpen)
}

func TestSubmitQuote_ClosedOrExpiredInquiry(t *testing.T) {
	svc, now := newTestService(&fakeGate{})
	openTestInquiry(t, svc, now.Add(-time.Hour))

	_, err := svc.SubmitQuote(context.Background(), quoteInput(1, "ACME Parts"))
	require.ErrorIs(t, err, ErrInquiryNotOpen)
	require.ErrorIs(t, err, domain.ErrDeadlinePassed)

	require.NoError(t, svc.CloseInquiry(context.Background(), "PO20260115001"))
	_, err = svc.SubmitQuote(context.Background(), quoteInput(1, "ACME Parts"))
	require.ErrorIs(t, err, ErrInquiryNotOpen)
}

func TestSubmitQuote_GateRejectionPropagates(t *testing.T) {
	gateErr := ErrInquiryNotOpen
	svc, now := newTestService(&fakeGate{err: gateErr})
	openTestInquiry(t, svc, now.Add(48*time.Hour))

	_, err := svc.SubmitQuote(context.Background(), quoteInput(1, "ACME Parts"))
	require.ErrorIs(t, err, gateErr)
}

func TestSubmitQuote_InvalidLines(t *testing.T) {
	svc, now := newTestService(&fakeGate{})
	openTestInquiry(t, svc, now.Add(48*time.Hour))

	input := quoteInput(1, "ACME Parts")
	input.Lines[1].UnitPrice = decimal.Zero
	_, err := svc.SubmitQuote(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidQuote)
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	input = quoteInput(1, "ACME Parts")
	input.Lines = nil
	_, err = svc.SubmitQuote(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidQuote)
	require.ErrorIs(t, err, domain.ErrEmptyLines)
}
