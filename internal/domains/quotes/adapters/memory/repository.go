package memory

import (
	"context"
	"sync"
	"time"

	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	"github.com/partsflow/procurement-api/internal/domains/quotes/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory inquiry and quote persistence adapter.
type Repository struct {
	mu        sync.RWMutex
	inquiries map[string]*domain.Inquiry
	quotes    map[string][]*domain.SupplierQuote
	quoteSeq  int64
	lineSeq   int64
	now       func() time.Time
}

// NewRepository builds an empty store using the wall clock.
func NewRepository() *Repository {
	return NewRepositoryWithClock(time.Now)
}

// NewRepositoryWithClock builds an empty store with an injectable clock.
func NewRepositoryWithClock(now func() time.Time) *Repository {
	return &Repository{
		inquiries: map[string]*domain.Inquiry{},
		quotes:    map[string][]*domain.SupplierQuote{},
		now:       now,
	}
}

func (r *Repository) SaveInquiry(_ context.Context, inquiry *domain.Inquiry) (*projection.Projection[*domain.Inquiry], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneInquiry(inquiry)
	r.inquiries[inquiry.OrderNo] = clone
	return projection.New(cloneInquiry(clone), r.now()), nil
}

func (r *Repository) OpenInquiryByOrder(_ context.Context, orderNo string) (*projection.Projection[*domain.Inquiry], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inquiry, ok := r.inquiries[orderNo]
	if !ok || inquiry.Status != domain.InquiryOpen {
		return nil, ports.ErrNotFound
	}
	return projection.New(cloneInquiry(inquiry), r.now()), nil
}

func (r *Repository) CloseInquiry(_ context.Context, orderNo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inquiry, ok := r.inquiries[orderNo]
	if !ok {
		return ports.ErrNotFound
	}
	inquiry.Close()
	return nil
}

func (r *Repository) SaveQuote(_ context.Context, quote *domain.SupplierQuote) (*projection.Projection[*domain.SupplierQuote], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneQuote(quote)
	existing := r.quotes[quote.OrderNo]
	for i, candidate := range existing {
		if candidate.SupplierID == quote.SupplierID {
			// Resubmission keeps the quote number and replaces the lines.
			clone.QuoteNo = candidate.QuoteNo
			r.assignLineIDs(clone)
			existing[i] = clone
			return projection.New(cloneQuote(clone), r.now()), nil
		}
	}
	r.quoteSeq++
	clone.QuoteNo = r.quoteSeq
	r.assignLineIDs(clone)
	r.quotes[quote.OrderNo] = append(existing, clone)
	return projection.New(cloneQuote(clone), r.now()), nil
}

func (r *Repository) QuotesByOrder(_ context.Context, orderNo string) ([]*projection.Projection[*domain.SupplierQuote], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.quotes[orderNo]
	list := make([]*projection.Projection[*domain.SupplierQuote], 0, len(stored))
	for _, quote := range stored {
		list = append(list, projection.New(cloneQuote(quote), r.now()))
	}
	return list, nil
}

func (r *Repository) assignLineIDs(quote *domain.SupplierQuote) {
	for i := range quote.Lines {
		r.lineSeq++
		quote.Lines[i].LineID = r.lineSeq
	}
}

func cloneInquiry(inquiry *domain.Inquiry) *domain.Inquiry {
	clone := *inquiry
	clone.SupplierIDs = append([]int64(nil), inquiry.SupplierIDs...)
	clone.SKUIDs = append([]int64(nil), inquiry.SKUIDs...)
	return &clone
}

func cloneQuote(quote *domain.SupplierQuote) *domain.SupplierQuote {
	clone := *quote
	clone.Lines = append([]domain.QuoteLine(nil), quote.Lines...)
	return &clone
}
