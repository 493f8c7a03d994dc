package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder("PO20260115001", "Downtown Garage", "alex", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "", []LineItemSpec{
		{SKUID: 101, SKUName: "Brake Pad", Brand: "Brembo", Quantity: 4},
		{SKUID: 202, SKUName: "Oil Filter", Brand: "Mann", Quantity: 2},
	})
	require.NoError(t, err)
	return order
}

func advanceToQuoted(t *testing.T, order *PurchaseOrder) {
	t.Helper()
	require.NoError(t, order.Submit())
	require.NoError(t, order.ApproveDraft())
	require.NoError(t, order.SendInquiry(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, order.CompleteInquiry())
}

func testSelection(quoteNo, lineID int64, unit string, qty int64) Selection {
	price := decimal.RequireFromString(unit)
	return Selection{
		QuoteNo:      quoteNo,
		QuoteLineID:  lineID,
		SupplierName: "ACME Parts",
		UnitPrice:    price,
		TotalPrice:   price.Mul(decimal.NewFromInt(qty)),
	}
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	_, err := NewPurchaseOrder("", "store", "alex", time.Time{}, "", []LineItemSpec{{SKUID: 1, Quantity: 1}})
	require.ErrorIs(t, err, ErrEmptyOrderNo)

	_, err = NewPurchaseOrder("PO1", "store", "alex", time.Time{}, "", nil)
	require.ErrorIs(t, err, ErrEmptyItems)

	_, err = NewPurchaseOrder("PO1", "store", "alex", time.Time{}, "", []LineItemSpec{{SKUID: 1, Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestNewPurchaseOrder_AssignsSequentialItemIDs(t *testing.T) {
	order := newTestOrder(t)
	require.Equal(t, StatusDraft, order.Status)
	require.Len(t, order.Items, 2)
	require.Equal(t, int64(1), order.Items[0].ID)
	require.Equal(t, int64(2), order.Items[1].ID)
	require.Equal(t, ItemPendingQuote, order.Items[0].Status)
}

func TestLifecycle_HappyPath(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.Equal(t, StatusQuoted, order.Status)

	err := order.ApplySelections(map[int64]Selection{
		1: testSelection(7, 71, "25.50", 4),
		2: testSelection(8, 81, "8.00", 2),
	})
	require.NoError(t, err)
	require.NoError(t, order.Commit())
	require.Equal(t, StatusOrdered, order.Status)
	require.Equal(t, ItemOrdered, order.Items[0].Status)

	at := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)
	require.NoError(t, order.ConfirmArrival([]int64{7, 8}, at))
	require.Equal(t, StatusArrived, order.Status)
	require.Equal(t, ItemArrived, order.Items[0].Status)
	require.NotNil(t, order.Items[0].ArrivedAt)
	require.True(t, order.Items[0].ArrivedAt.Equal(at))
}

func TestTransition_Rejected(t *testing.T) {
	order := newTestOrder(t)
	require.ErrorIs(t, order.CompleteInquiry(), ErrInvalidTransition)

	require.NoError(t, order.Submit())
	require.NoError(t, order.RejectDraft())
	require.Equal(t, StatusApprovalRejected, order.Status)
	require.True(t, order.Status.Terminal())
	require.ErrorIs(t, order.Submit(), ErrInvalidTransition)
}

func TestUpdateQuantity_LockedAfterSubmit(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.UpdateQuantity(1, 6))
	require.Equal(t, int64(6), order.Item(1).Quantity)

	require.ErrorIs(t, order.UpdateQuantity(1, 0), ErrInvalidQuantity)
	require.ErrorIs(t, order.UpdateQuantity(99, 3), ErrItemNotFound)

	require.NoError(t, order.Submit())
	require.ErrorIs(t, order.UpdateQuantity(1, 8), ErrQuantityLocked)
}

func TestApplySelections_RequiresQuotedStatus(t *testing.T) {
	order := newTestOrder(t)
	err := order.ApplySelections(map[int64]Selection{1: testSelection(7, 71, "10", 4)})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplySelections_RejectsDoubleSelection(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{1: testSelection(7, 71, "10", 4)}))
	err := order.ApplySelections(map[int64]Selection{1: testSelection(9, 91, "9", 4)})
	require.ErrorIs(t, err, ErrAlreadySelected)
}

func TestCommit_NothingSelected(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.ErrorIs(t, order.Commit(), ErrNothingSelected)
}

func TestCommit_CarriesUnselectedItems(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{1: testSelection(7, 71, "10", 4)}))
	require.NoError(t, order.Commit())
	require.Equal(t, ItemOrdered, order.Item(1).Status)
	require.Equal(t, ItemPendingQuote, order.Item(2).Status)
	require.Len(t, order.PendingItems(), 1)
}

func TestPriceApprovalBranch(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{1: testSelection(7, 71, "100", 4)}))
	require.NoError(t, order.BeginPriceApproval())
	require.Equal(t, StatusPricePendingApproval, order.Status)

	require.NoError(t, order.Commit())
	require.Equal(t, StatusOrdered, order.Status)
}

func TestPriceApprovalRejection_IsTerminal(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{1: testSelection(7, 71, "100", 4)}))
	require.NoError(t, order.BeginPriceApproval())
	require.NoError(t, order.RejectPrice())
	require.True(t, order.Status.Terminal())
	require.ErrorIs(t, order.Commit(), ErrInvalidTransition)
}

func TestConfirmArrival_Partial(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{
		1: testSelection(7, 71, "10", 4),
		2: testSelection(8, 81, "5", 2),
	}))
	require.NoError(t, order.Commit())

	at := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)
	require.NoError(t, order.ConfirmArrival([]int64{7}, at))
	require.Equal(t, StatusOrdered, order.Status)
	require.Equal(t, ItemArrived, order.Item(1).Status)

	require.NoError(t, order.ConfirmArrival([]int64{8}, at.Add(time.Hour)))
	require.Equal(t, StatusArrived, order.Status)
}

func TestConfirmArrival_SharedQuote(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{
		1: testSelection(7, 71, "10", 4),
		2: testSelection(7, 72, "5", 2),
	}))
	require.NoError(t, order.Commit())

	at := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)
	require.NoError(t, order.ConfirmArrival([]int64{7}, at))
	require.Equal(t, ItemArrived, order.Item(1).Status)
	require.Equal(t, ItemArrived, order.Item(2).Status)
	require.Equal(t, StatusArrived, order.Status)
}

func TestConfirmArrival_Errors(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.NoError(t, order.ApplySelections(map[int64]Selection{
		1: testSelection(7, 71, "10", 4),
		2: testSelection(8, 81, "5", 2),
	}))
	require.NoError(t, order.Commit())

	at := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)
	require.ErrorIs(t, order.ConfirmArrival(nil, at), ErrNoArrivalRefs)
	require.ErrorIs(t, order.ConfirmArrival([]int64{99}, at), ErrItemNotFound)

	require.NoError(t, order.ConfirmArrival([]int64{7}, at))
	require.ErrorIs(t, order.ConfirmArrival([]int64{7}, at), ErrAlreadyArrived)
	require.Equal(t, StatusOrdered, order.Status)
}

func TestSelectedTotal(t *testing.T) {
	order := newTestOrder(t)
	advanceToQuoted(t, order)
	require.True(t, order.SelectedTotal().IsZero())
	require.NoError(t, order.ApplySelections(map[int64]Selection{
		1: testSelection(7, 71, "25.50", 4),
		2: testSelection(8, 81, "8.00", 2),
	}))
	require.True(t, order.SelectedTotal().Equal(decimal.RequireFromString("118")))
}

func TestItemStatus_Monotonic(t *testing.T) {
	require.True(t, ItemPendingQuote.Before(ItemSelected))
	require.True(t, ItemArrived.AtLeast(ItemOrdered))
	require.False(t, ItemSelected.AtLeast(ItemOrdered))

	item := &OrderLineItem{ID: 1, Status: ItemOrdered}
	require.ErrorIs(t, item.advance(ItemSelected), ErrItemRegression)
	require.ErrorIs(t, item.advance(ItemOrdered), ErrItemRegression)
}
