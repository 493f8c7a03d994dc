// Package mapper translates between the approvals HTTP wire format and the
// application layer's inputs and projections.
package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	approvalsports "github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

// Resolve carries the decision on a pending approval.
type Resolve struct {
	Approved   *bool  `json:"approved" binding:"required"`
	ResolvedBy string `json:"resolvedBy" binding:"required"`
	Remark     string `json:"remark"`
}

// ToResolveInput converts the wire payload into the application input.
func ToResolveInput(approvalNo string, payload Resolve) approvalsports.ResolveInput {
	return approvalsports.ResolveInput{
		ApprovalNo: approvalNo,
		Approved:   payload.Approved != nil && *payload.Approved,
		ResolvedBy: payload.ResolvedBy,
		Remark:     payload.Remark,
	}
}

// Approval is the wire shape of a price approval record.
type Approval struct {
	ApprovalNo         string          `json:"approvalNo"`
	OrderNo            string          `json:"orderNo"`
	RequestedBy        string          `json:"requestedBy"`
	SubmittedTotal     decimal.Decimal `json:"submittedTotal"`
	HistoricalAvgTotal decimal.Decimal `json:"historicalAvgTotal"`
	DeviationRatio     decimal.Decimal `json:"deviationRatio"`
	Status             string          `json:"status"`
	RequestedAt        time.Time       `json:"requestedAt"`
	ResolvedAt         *time.Time      `json:"resolvedAt,omitempty"`
	ResolvedBy         string          `json:"resolvedBy,omitempty"`
	Remark             string          `json:"remark,omitempty"`
}

// FromRecord renders a stored approval record for the wire.
func FromRecord(p *projection.Projection[*domain.ApprovalRecord]) Approval {
	record := p.Entity
	return Approval{
		ApprovalNo:         record.ApprovalNo,
		OrderNo:            record.OrderNo,
		RequestedBy:        record.RequestedBy,
		SubmittedTotal:     record.SubmittedTotal,
		HistoricalAvgTotal: record.HistoricalAvgTotal,
		DeviationRatio:     record.DeviationRatio,
		Status:             string(record.Status),
		RequestedAt:        record.RequestedAt,
		ResolvedAt:         record.ResolvedAt,
		ResolvedBy:         record.ResolvedBy,
		Remark:             record.Remark,
	}
}

// FromRecordList renders an approval listing.
func FromRecordList(projections []*projection.Projection[*domain.ApprovalRecord]) []Approval {
	records := make([]Approval, 0, len(projections))
	for _, p := range projections {
		records = append(records, FromRecord(p))
	}
	return records
}
