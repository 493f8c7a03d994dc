package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAddLine_Validation(t *testing.T) {
	quote := &SupplierQuote{OrderNo: "PO1", SupplierID: 1}

	err := quote.AddLine(QuoteLine{SKUID: 101, Quantity: 4, UnitPrice: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidPrice)

	err = quote.AddLine(QuoteLine{SKUID: 101, Quantity: 0, UnitPrice: decimal.NewFromInt(9)})
	require.ErrorIs(t, err, ErrInvalidQty)

	require.NoError(t, quote.AddLine(QuoteLine{SKUID: 101, Quantity: 4, UnitPrice: decimal.NewFromInt(9)}))
	err = quote.AddLine(QuoteLine{SKUID: 101, Quantity: 2, UnitPrice: decimal.NewFromInt(8)})
	require.ErrorIs(t, err, ErrDuplicateLine)
	require.Len(t, quote.Lines, 1)
}

func TestValidate_RequiresLines(t *testing.T) {
	quote := &SupplierQuote{OrderNo: "PO1", SupplierID: 1}
	require.ErrorIs(t, quote.Validate(), ErrEmptyLines)

	require.NoError(t, quote.AddLine(QuoteLine{SKUID: 101, Quantity: 4, UnitPrice: decimal.NewFromInt(9)}))
	require.NoError(t, quote.Validate())
}

func TestNewInquiry_RequiresSuppliers(t *testing.T) {
	_, err := NewInquiry("INQ-1", "PO1", nil, []int64{101}, time.Now(), time.Now())
	require.ErrorIs(t, err, ErrNoSuppliers)
}

func TestAcceptsQuotes(t *testing.T) {
	deadline := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	inquiry, err := NewInquiry("INQ-1", "PO1", []int64{1, 2}, []int64{101}, deadline, deadline.Add(-72*time.Hour))
	require.NoError(t, err)

	require.NoError(t, inquiry.AcceptsQuotes(deadline.Add(-time.Hour)))
	require.ErrorIs(t, inquiry.AcceptsQuotes(deadline.Add(time.Minute)), ErrDeadlinePassed)

	inquiry.Close()
	require.Equal(t, InquiryClosed, inquiry.Status)
	require.ErrorIs(t, inquiry.AcceptsQuotes(deadline.Add(-time.Hour)), ErrInquiryClosed)

	// Closing twice stays closed.
	inquiry.Close()
	require.Equal(t, InquiryClosed, inquiry.Status)
}
