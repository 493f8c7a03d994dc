package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrAlreadyResolved signals a second resolution attempt on an approval
// record. Approval records resolve exactly once.
var ErrAlreadyResolved = errors.New("approval record already resolved")

// ApprovalStatus is the state of a price approval record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// ApprovalRecord captures one price-threshold breach awaiting a decision.
// The record is append-once: it is created PENDING and resolved exactly once.
type ApprovalRecord struct {
	ApprovalNo         string
	OrderNo            string
	RequestedBy        string
	SubmittedTotal     decimal.Decimal
	HistoricalAvgTotal decimal.Decimal
	DeviationRatio     decimal.Decimal
	Status             ApprovalStatus
	RequestedAt        time.Time
	ResolvedAt         *time.Time
	ResolvedBy         string
	Remark             string
}

// NewApprovalRecord opens a pending record for an over-threshold selection.
func NewApprovalRecord(approvalNo, orderNo, requestedBy string, submitted, baseline, ratio decimal.Decimal, at time.Time) *ApprovalRecord {
	return &ApprovalRecord{
		ApprovalNo:         approvalNo,
		OrderNo:            orderNo,
		RequestedBy:        requestedBy,
		SubmittedTotal:     submitted,
		HistoricalAvgTotal: baseline,
		DeviationRatio:     ratio,
		Status:             ApprovalPending,
		RequestedAt:        at,
	}
}

// Approve resolves the record positively.
func (a *ApprovalRecord) Approve(by string, remark string, at time.Time) error {
	return a.resolve(ApprovalApproved, by, remark, at)
}

// Reject resolves the record negatively.
func (a *ApprovalRecord) Reject(by string, remark string, at time.Time) error {
	return a.resolve(ApprovalRejected, by, remark, at)
}

func (a *ApprovalRecord) resolve(status ApprovalStatus, by, remark string, at time.Time) error {
	if a.Status != ApprovalPending {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, a.ApprovalNo, a.Status)
	}
	a.Status = status
	a.ResolvedBy = by
	a.Remark = remark
	resolved := at
	a.ResolvedAt = &resolved
	return nil
}
