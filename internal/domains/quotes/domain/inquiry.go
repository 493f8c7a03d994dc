package domain

import (
	"errors"
	"time"
)

var (
	ErrInquiryClosed   = errors.New("inquiry is closed")
	ErrDeadlinePassed  = errors.New("inquiry deadline has passed")
	ErrNoSuppliers     = errors.New("an inquiry needs at least one supplier")
	ErrAlreadyInquired = errors.New("order already has an open inquiry")
)

// InquiryStatus is the state of a supplier inquiry round.
type InquiryStatus string

const (
	InquiryOpen   InquiryStatus = "OPEN"
	InquiryClosed InquiryStatus = "CLOSED"
)

// Inquiry is one request-for-quote round sent to a set of suppliers for an
// order. Quotes are only accepted while the inquiry is open and the deadline
// has not passed.
type Inquiry struct {
	InquiryNo   string
	OrderNo     string
	SupplierIDs []int64
	SKUIDs      []int64
	Deadline    time.Time
	SentAt      time.Time
	Status      InquiryStatus
}

// NewInquiry opens an inquiry round.
func NewInquiry(inquiryNo, orderNo string, supplierIDs, skuIDs []int64, deadline, sentAt time.Time) (*Inquiry, error) {
	if len(supplierIDs) == 0 {
		return nil, ErrNoSuppliers
	}
	return &Inquiry{
		InquiryNo:   inquiryNo,
		OrderNo:     orderNo,
		SupplierIDs: supplierIDs,
		SKUIDs:      skuIDs,
		Deadline:    deadline,
		SentAt:      sentAt,
		Status:      InquiryOpen,
	}, nil
}

// AcceptsQuotes reports whether a quote submitted at the given time is
// admissible.
func (i *Inquiry) AcceptsQuotes(at time.Time) error {
	if i.Status != InquiryOpen {
		return ErrInquiryClosed
	}
	if at.After(i.Deadline) {
		return ErrDeadlinePassed
	}
	return nil
}

// Close ends the round. Closing an already closed inquiry is a no-op.
func (i *Inquiry) Close() {
	i.Status = InquiryClosed
}
