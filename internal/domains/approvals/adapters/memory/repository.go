package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	"github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory approval record persistence adapter.
type Repository struct {
	mu      sync.RWMutex
	records map[string]*domain.ApprovalRecord
	now     func() time.Time
}

// NewRepository builds an empty store using the wall clock.
func NewRepository() *Repository {
	return NewRepositoryWithClock(time.Now)
}

// NewRepositoryWithClock builds an empty store with an injectable clock.
func NewRepositoryWithClock(now func() time.Time) *Repository {
	return &Repository{records: map[string]*domain.ApprovalRecord{}, now: now}
}

func (r *Repository) Save(_ context.Context, record *domain.ApprovalRecord) (*projection.Projection[*domain.ApprovalRecord], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneRecord(record)
	r.records[record.ApprovalNo] = clone
	return projection.New(cloneRecord(clone), r.now()), nil
}

func (r *Repository) GetByNo(_ context.Context, approvalNo string) (*projection.Projection[*domain.ApprovalRecord], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[approvalNo]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projection.New(cloneRecord(record), r.now()), nil
}

func (r *Repository) ListPending(_ context.Context) ([]*projection.Projection[*domain.ApprovalRecord], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*projection.Projection[*domain.ApprovalRecord]
	for _, record := range r.records {
		if record.Status == domain.ApprovalPending {
			list = append(list, projection.New(cloneRecord(record), r.now()))
		}
	}
	return list, nil
}

func cloneRecord(record *domain.ApprovalRecord) *domain.ApprovalRecord {
	clone := *record
	if record.ResolvedAt != nil {
		at := *record.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}

// Pricing is an in-memory historical pricing source. Totals recorded for an
// order's SKU mix feed the baseline later selections are compared against.
type Pricing struct {
	mu        sync.RWMutex
	baselines map[string]decimal.Decimal
}

var _ ports.HistoricalPricing = (*Pricing)(nil)

// NewPricing builds an empty pricing source.
func NewPricing() *Pricing {
	return &Pricing{baselines: map[string]decimal.Decimal{}}
}

// SetBaseline seeds or replaces the baseline for an order.
func (p *Pricing) SetBaseline(orderNo string, total decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baselines[orderNo] = total
}

// BaselineTotal returns the recorded baseline, or zero when none exists.
func (p *Pricing) BaselineTotal(_ context.Context, orderNo string) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if baseline, ok := p.baselines[orderNo]; ok {
		return baseline, nil
	}
	return decimal.Zero, nil
}
