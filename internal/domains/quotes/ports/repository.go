package ports

import (
	"context"
	"errors"

	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

var ErrNotFound = errors.New("quote record not found")

// Repository persists inquiries and supplier quotes.
type Repository interface {
	SaveInquiry(ctx context.Context, inquiry *domain.Inquiry) (*projection.Projection[*domain.Inquiry], error)
	OpenInquiryByOrder(ctx context.Context, orderNo string) (*projection.Projection[*domain.Inquiry], error)
	CloseInquiry(ctx context.Context, orderNo string) error
	// SaveQuote persists the quote, assigning QuoteNo and line ids on first
	// save. A resubmission by the same supplier for the same order keeps its
	// quote number and replaces the lines.
	SaveQuote(ctx context.Context, quote *domain.SupplierQuote) (*projection.Projection[*domain.SupplierQuote], error)
	QuotesByOrder(ctx context.Context, orderNo string) ([]*projection.Projection[*domain.SupplierQuote], error)
}
