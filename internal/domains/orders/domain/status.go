package domain

import (
	"errors"
	"fmt"
)

// OrderStatus represents the lifecycle state of a purchase order.
type OrderStatus string

const (
	StatusDraft                 OrderStatus = "DRAFT"
	StatusPendingApproval       OrderStatus = "PENDING_APPROVAL"
	StatusApprovalRejected      OrderStatus = "APPROVAL_REJECTED"
	StatusAwaitInquiry          OrderStatus = "AWAIT_INQUIRY"
	StatusInquiring             OrderStatus = "INQUIRING"
	StatusQuoted                OrderStatus = "QUOTED"
	StatusPricePendingApproval  OrderStatus = "PRICE_PENDING_APPROVAL"
	StatusPriceApprovalRejected OrderStatus = "PRICE_APPROVAL_REJECTED"
	StatusOrdered               OrderStatus = "ORDERED"
	StatusArrived               OrderStatus = "ARRIVED"
)

// ErrInvalidTransition signals an order status change the lifecycle does not permit.
var ErrInvalidTransition = errors.New("order status transition not permitted")

// orderTransitions is the closed transition table for the order lifecycle.
// APPROVAL_REJECTED and PRICE_APPROVAL_REJECTED are terminal for the cycle.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusDraft:                 {StatusPendingApproval},
	StatusPendingApproval:       {StatusApprovalRejected, StatusAwaitInquiry},
	StatusApprovalRejected:      {},
	StatusAwaitInquiry:          {StatusInquiring},
	StatusInquiring:             {StatusQuoted},
	StatusQuoted:                {StatusPricePendingApproval, StatusOrdered},
	StatusPricePendingApproval:  {StatusPriceApprovalRejected, StatusOrdered},
	StatusPriceApprovalRejected: {},
	StatusOrdered:               {StatusArrived},
	StatusArrived:               {},
}

// Valid reports whether the status is a known member of the lifecycle.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether the lifecycle permits moving from one
// order status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ItemStatus represents the state of a single order line item. Line item
// progress is strictly monotonic; an item never moves backwards.
type ItemStatus string

const (
	ItemPendingQuote ItemStatus = "PENDING_QUOTE"
	ItemSelected     ItemStatus = "SELECTED"
	ItemOrdered      ItemStatus = "ORDERED"
	ItemArrived      ItemStatus = "ARRIVED"
)

// ErrItemRegression signals an attempt to move a line item backwards.
var ErrItemRegression = errors.New("line item status must not regress")

var itemRank = map[ItemStatus]int{
	ItemPendingQuote: 0,
	ItemSelected:     1,
	ItemOrdered:      2,
	ItemArrived:      3,
}

// Valid reports whether the item status is a known member of the lifecycle.
func (s ItemStatus) Valid() bool {
	_, ok := itemRank[s]
	return ok
}

// Before reports whether the receiver precedes the other status.
func (s ItemStatus) Before(other ItemStatus) bool {
	return itemRank[s] < itemRank[other]
}

// AtLeast reports whether the receiver is equal to or past the other status.
func (s ItemStatus) AtLeast(other ItemStatus) bool {
	return itemRank[s] >= itemRank[other]
}

func invalidTransition(from, to OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
