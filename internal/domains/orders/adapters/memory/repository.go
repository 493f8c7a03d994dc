package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	types "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	"github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

type record struct {
	order     *domain.PurchaseOrder
	createdAt time.Time
	updatedAt time.Time
	log       []domain.StatusLogEntry
}

// Repository is an in-memory purchase order persistence adapter. Mutations
// run under the write lock, so a Mutate callback observes and produces a
// consistent aggregate.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*record
	daySeq map[string]int64
	now    func() time.Time
}

// NewRepository builds an empty store using the wall clock.
func NewRepository() *Repository {
	return NewRepositoryWithClock(time.Now)
}

// NewRepositoryWithClock builds an empty store with an injectable clock.
func NewRepositoryWithClock(now func() time.Time) *Repository {
	return &Repository{
		orders: map[string]*record{},
		daySeq: map[string]int64{},
		now:    now,
	}
}

// NextOrderNo issues PO<yyyymmdd><seq> numbers with a per-day sequence.
func (r *Repository) NextOrderNo(_ context.Context, at time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := at.Format("20060102")
	r.daySeq[day]++
	return domain.FormatOrderNo(day, r.daySeq[day]), nil
}

func (r *Repository) Create(_ context.Context, order *domain.PurchaseOrder) (*types.OrderProjection, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.OrderNo]; exists {
		return nil, fmt.Errorf("order %s already exists", order.OrderNo)
	}
	now := r.now()
	rec := &record{order: cloneOrder(order), createdAt: now, updatedAt: now}
	r.orders[order.OrderNo] = rec
	return projectRecord(rec), nil
}

func (r *Repository) GetByOrderNo(_ context.Context, orderNo string) (*types.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.orders[orderNo]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectRecord(rec), nil
}

func (r *Repository) Mutate(_ context.Context, orderNo string, fn func(order *domain.PurchaseOrder) error) (*types.OrderProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.orders[orderNo]
	if !ok {
		return nil, ports.ErrNotFound
	}
	// fn works on a clone so a failed mutation leaves the stored aggregate
	// untouched.
	working := cloneOrder(rec.order)
	if err := fn(working); err != nil {
		return nil, err
	}
	rec.order = working
	rec.updatedAt = r.now()
	return projectRecord(rec), nil
}

func (r *Repository) List(_ context.Context, filter types.ListFilter) ([]*types.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*types.OrderProjection, 0, len(r.orders))
	for _, rec := range r.orders {
		if !matches(rec, filter) {
			continue
		}
		list = append(list, projectRecord(rec))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Metadata.CreatedAt.Equal(list[j].Metadata.CreatedAt) {
			return list[i].Order.OrderNo < list[j].Order.OrderNo
		}
		return list[i].Metadata.CreatedAt.Before(list[j].Metadata.CreatedAt)
	})
	return list, nil
}

func (r *Repository) AppendStatusLog(_ context.Context, orderNo string, entry domain.StatusLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.orders[orderNo]
	if !ok {
		return ports.ErrNotFound
	}
	rec.log = append(rec.log, entry)
	return nil
}

func (r *Repository) StatusLog(_ context.Context, orderNo string) ([]domain.StatusLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.orders[orderNo]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := make([]domain.StatusLogEntry, len(rec.log))
	copy(out, rec.log)
	return out, nil
}

func matches(rec *record, filter types.ListFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if rec.order.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.CreatorName != "" && rec.order.CreatorName != filter.CreatorName {
		return false
	}
	if !filter.CreatedFrom.IsZero() && rec.createdAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && rec.createdAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func projectRecord(rec *record) *types.OrderProjection {
	return types.NewOrderProjection(cloneOrder(rec.order), rec.createdAt, rec.updatedAt)
}

func cloneOrder(order *domain.PurchaseOrder) *domain.PurchaseOrder {
	clone := *order
	clone.Items = make([]*domain.OrderLineItem, len(order.Items))
	for i, item := range order.Items {
		itemClone := *item
		if item.ArrivedAt != nil {
			at := *item.ArrivedAt
			itemClone.ArrivedAt = &at
		}
		clone.Items[i] = &itemClone
	}
	return &clone
}
