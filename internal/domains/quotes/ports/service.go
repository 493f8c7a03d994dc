package ports

import (
	"context"
	"time"

	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	"github.com/partsflow/procurement-api/internal/shared/projection"
	"github.com/shopspring/decimal"
)

// OpenInquiryInput starts a request-for-quote round for an order.
type OpenInquiryInput struct {
	OrderNo     string
	SupplierIDs []int64
	SKUIDs      []int64
	Deadline    time.Time
}

// QuoteLineInput is one priced line of a supplier submission.
type QuoteLineInput struct {
	OrderItemID      int64
	SKUID            int64
	SKUName          string
	Quantity         int64
	UnitPrice        decimal.Decimal
	ExpectedDelivery time.Time
	Remark           string
}

// SubmitQuoteInput is a supplier's complete quote submission.
type SubmitQuoteInput struct {
	OrderNo      string
	SupplierID   int64
	SupplierName string
	Lines        []QuoteLineInput
}

// Service defines the quotes use cases exposed to adapters.
type Service interface {
	OpenInquiry(ctx context.Context, input OpenInquiryInput) (*projection.Projection[*domain.Inquiry], error)
	CloseInquiry(ctx context.Context, orderNo string) error
	SubmitQuote(ctx context.Context, input SubmitQuoteInput) (*projection.Projection[*domain.SupplierQuote], error)
	QuotesByOrder(ctx context.Context, orderNo string) ([]*projection.Projection[*domain.SupplierQuote], error)
}

// OrderGate asks the orders context whether an order currently accepts
// supplier quotes.
type OrderGate interface {
	CanAcceptQuotes(ctx context.Context, orderNo string) error
}
