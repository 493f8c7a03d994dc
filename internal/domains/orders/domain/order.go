package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrderNo    = errors.New("order number is required")
	ErrEmptyItems      = errors.New("a purchase order needs at least one line item")
	ErrInvalidQuantity = errors.New("line item quantity must be greater than zero")
	ErrQuantityLocked  = errors.New("line item quantity is immutable once the draft is submitted")
	ErrItemNotFound    = errors.New("line item not found in order")
	ErrAlreadySelected = errors.New("line item already carries a selected quote")
	ErrNotAssigned     = errors.New("line item has no supplier assignment")
	ErrAlreadyArrived  = errors.New("line item already confirmed as arrived")
	ErrNoArrivalRefs   = errors.New("arrival confirmation needs at least one quote reference")
	ErrNothingSelected = errors.New("no line item carries a selected quote")
	ErrInquiryDeadline = errors.New("inquiry deadline must be in the future of the order")
)

// FormatOrderNo renders the PO<yyyymmdd><seq> order number for a day and a
// per-day sequence value.
func FormatOrderNo(day string, seq int64) string {
	return fmt.Sprintf("PO%s%03d", day, seq)
}

// Selection carries the quote data bound to a line item when an operator
// picks a supplier for it.
type Selection struct {
	QuoteNo          int64
	QuoteLineID      int64
	SupplierName     string
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	ExpectedDelivery time.Time
}

// OrderLineItem is one SKU/quantity request within a purchase order. The
// order exclusively owns its line items.
type OrderLineItem struct {
	ID       int64
	SKUID    int64
	SKUName  string
	Brand    string
	Quantity int64
	Status   ItemStatus

	// Populated once a selection has been made.
	SupplierName     string
	QuoteNo          int64
	QuoteLineID      int64
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	ExpectedDelivery time.Time
	ArrivedAt        *time.Time
}

// Assigned reports whether the line item carries a supplier assignment.
func (li *OrderLineItem) Assigned() bool {
	return li.QuoteNo != 0
}

func (li *OrderLineItem) selectQuote(sel Selection) error {
	if li.Status != ItemPendingQuote {
		return fmt.Errorf("%w: item %d is %s", ErrAlreadySelected, li.ID, li.Status)
	}
	li.SupplierName = sel.SupplierName
	li.QuoteNo = sel.QuoteNo
	li.QuoteLineID = sel.QuoteLineID
	li.UnitPrice = sel.UnitPrice
	li.TotalPrice = sel.TotalPrice
	li.ExpectedDelivery = sel.ExpectedDelivery
	li.Status = ItemSelected
	return nil
}

func (li *OrderLineItem) advance(next ItemStatus) error {
	if next.Before(li.Status) || next == li.Status {
		return fmt.Errorf("%w: item %d %s -> %s", ErrItemRegression, li.ID, li.Status, next)
	}
	li.Status = next
	return nil
}

// LineItemSpec describes a requested line item at draft-creation time.
type LineItemSpec struct {
	SKUID    int64
	SKUName  string
	Brand    string
	Quantity int64
}

// PurchaseOrder is the aggregate root of the purchase lifecycle. It owns its
// line items; line items never outlive the order.
type PurchaseOrder struct {
	OrderNo              string
	StoreName            string
	CreatorName          string
	ExpectedDeliveryDate time.Time
	InquiryDeadline      time.Time
	Remark               string
	Status               OrderStatus
	Items                []*OrderLineItem
}

// NewPurchaseOrder validates the invariants and builds a DRAFT order.
// The order number is server-assigned and must already be known.
func NewPurchaseOrder(orderNo, storeName, creatorName string, expectedDelivery time.Time, remark string, specs []LineItemSpec) (*PurchaseOrder, error) {
	if orderNo == "" {
		return nil, ErrEmptyOrderNo
	}
	if len(specs) == 0 {
		return nil, ErrEmptyItems
	}
	order := &PurchaseOrder{
		OrderNo:              orderNo,
		StoreName:            storeName,
		CreatorName:          creatorName,
		ExpectedDeliveryDate: expectedDelivery,
		Remark:               remark,
		Status:               StatusDraft,
	}
	for i, spec := range specs {
		if spec.Quantity <= 0 {
			return nil, fmt.Errorf("%w: sku %d", ErrInvalidQuantity, spec.SKUID)
		}
		order.Items = append(order.Items, &OrderLineItem{
			ID:       int64(i + 1),
			SKUID:    spec.SKUID,
			SKUName:  spec.SKUName,
			Brand:    spec.Brand,
			Quantity: spec.Quantity,
			Status:   ItemPendingQuote,
		})
	}
	return order, nil
}

func (o *PurchaseOrder) transition(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return invalidTransition(o.Status, to)
	}
	o.Status = to
	return nil
}

// Submit moves a draft into the first approval gate.
func (o *PurchaseOrder) Submit() error {
	return o.transition(StatusPendingApproval)
}

// ApproveDraft releases the order toward inquiry.
func (o *PurchaseOrder) ApproveDraft() error {
	return o.transition(StatusAwaitInquiry)
}

// RejectDraft terminates the current cycle; a new draft is required to proceed.
func (o *PurchaseOrder) RejectDraft() error {
	return o.transition(StatusApprovalRejected)
}

// SendInquiry opens the supplier inquiry window.
func (o *PurchaseOrder) SendInquiry(deadline time.Time) error {
	if err := o.transition(StatusInquiring); err != nil {
		return err
	}
	o.InquiryDeadline = deadline
	return nil
}

// CompleteInquiry closes the inquiry window once supplier quotes are in.
func (o *PurchaseOrder) CompleteInquiry() error {
	return o.transition(StatusQuoted)
}

// ApplySelections binds the chosen quote to each referenced line item.
// Only a QUOTED order accepts selections; every referenced item must still
// be PENDING_QUOTE.
func (o *PurchaseOrder) ApplySelections(selections map[int64]Selection) error {
	if o.Status != StatusQuoted {
		return invalidTransition(o.Status, StatusOrdered)
	}
	for itemID, sel := range selections {
		item := o.Item(itemID)
		if item == nil {
			return fmt.Errorf("%w: id %d", ErrItemNotFound, itemID)
		}
		if err := item.selectQuote(sel); err != nil {
			return err
		}
	}
	return nil
}

// BeginPriceApproval stalls the order until the price approval resolves.
func (o *PurchaseOrder) BeginPriceApproval() error {
	return o.transition(StatusPricePendingApproval)
}

// RejectPrice terminates the current selection cycle after a price rejection.
func (o *PurchaseOrder) RejectPrice() error {
	return o.transition(StatusPriceApprovalRejected)
}

// Commit moves the order to ORDERED and every selected line item with it.
// Items without any quote stay behind; they represent unfulfilled demand.
func (o *PurchaseOrder) Commit() error {
	if !CanTransition(o.Status, StatusOrdered) {
		return invalidTransition(o.Status, StatusOrdered)
	}
	committed := false
	for _, item := range o.Items {
		if item.Status == ItemSelected {
			if err := item.advance(ItemOrdered); err != nil {
				return err
			}
			committed = true
		}
	}
	if !committed && !o.hasItemsAtLeast(ItemOrdered) {
		return ErrNothingSelected
	}
	o.Status = StatusOrdered
	return nil
}

// ConfirmArrival marks the line items identified by quote references as
// arrived. A reference covers every line item assigned to that quote: one
// supplier quote may win several lines, and its goods arrive together.
// Partial confirmation is a first-class case: the order only advances to
// ARRIVED once every assigned item has arrived.
func (o *PurchaseOrder) ConfirmArrival(quoteRefs []int64, at time.Time) error {
	if o.Status != StatusOrdered {
		return invalidTransition(o.Status, StatusArrived)
	}
	if len(quoteRefs) == 0 {
		return ErrNoArrivalRefs
	}
	for _, ref := range quoteRefs {
		items := o.itemsByQuoteNo(ref)
		if len(items) == 0 {
			return fmt.Errorf("%w: quote %d", ErrItemNotFound, ref)
		}
		confirmed := false
		for _, item := range items {
			if !item.Assigned() {
				return fmt.Errorf("%w: item %d", ErrNotAssigned, item.ID)
			}
			if item.Status == ItemArrived {
				continue
			}
			if err := item.advance(ItemArrived); err != nil {
				return err
			}
			arrived := at
			item.ArrivedAt = &arrived
			confirmed = true
		}
		if !confirmed {
			return fmt.Errorf("%w: quote %d", ErrAlreadyArrived, ref)
		}
	}
	if o.allAssignedArrived() {
		return o.transition(StatusArrived)
	}
	return nil
}

// UpdateQuantity edits a draft line item's requested quantity. Quantities
// are immutable once the draft has been submitted.
func (o *PurchaseOrder) UpdateQuantity(itemID, quantity int64) error {
	if o.Status != StatusDraft {
		return ErrQuantityLocked
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	item := o.Item(itemID)
	if item == nil {
		return fmt.Errorf("%w: id %d", ErrItemNotFound, itemID)
	}
	item.Quantity = quantity
	return nil
}

// Item returns the line item with the given id, or nil.
func (o *PurchaseOrder) Item(id int64) *OrderLineItem {
	for _, item := range o.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// ItemBySKU returns the first line item referencing the SKU, or nil.
func (o *PurchaseOrder) ItemBySKU(skuID int64) *OrderLineItem {
	for _, item := range o.Items {
		if item.SKUID == skuID {
			return item
		}
	}
	return nil
}

func (o *PurchaseOrder) itemsByQuoteNo(quoteNo int64) []*OrderLineItem {
	var matched []*OrderLineItem
	for _, item := range o.Items {
		if item.QuoteNo == quoteNo {
			matched = append(matched, item)
		}
	}
	return matched
}

// PendingItems returns line items still awaiting a supplier selection.
func (o *PurchaseOrder) PendingItems() []*OrderLineItem {
	var pending []*OrderLineItem
	for _, item := range o.Items {
		if item.Status == ItemPendingQuote {
			pending = append(pending, item)
		}
	}
	return pending
}

// SelectedTotal sums the quoted totals of every item carrying a selection.
func (o *PurchaseOrder) SelectedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.Assigned() {
			total = total.Add(item.TotalPrice)
		}
	}
	return total
}

func (o *PurchaseOrder) hasItemsAtLeast(status ItemStatus) bool {
	for _, item := range o.Items {
		if item.Status.AtLeast(status) {
			return true
		}
	}
	return false
}

func (o *PurchaseOrder) allAssignedArrived() bool {
	for _, item := range o.Items {
		if item.Assigned() && item.Status != ItemArrived {
			return false
		}
	}
	return true
}
