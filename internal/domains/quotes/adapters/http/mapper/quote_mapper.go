// Package mapper translates between the quotes HTTP wire format and the
// application layer's inputs and projections.
package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	quotesports "github.com/partsflow/procurement-api/internal/domains/quotes/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

// OpenInquiry starts a request-for-quote round.
type OpenInquiry struct {
	OrderNo     string    `json:"orderNo" binding:"required"`
	SupplierIDs []int64   `json:"supplierIds" binding:"required"`
	SKUIDs      []int64   `json:"skuIds"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// ToOpenInquiryInput converts the wire payload into the application input.
func ToOpenInquiryInput(payload OpenInquiry) quotesports.OpenInquiryInput {
	return quotesports.OpenInquiryInput{
		OrderNo:     payload.OrderNo,
		SupplierIDs: payload.SupplierIDs,
		SKUIDs:      payload.SKUIDs,
		Deadline:    payload.Deadline,
	}
}

// QuoteLine is one priced line in a supplier submission.
type QuoteLine struct {
	OrderItemID      int64           `json:"orderItemId"`
	SKUID            int64           `json:"skuId" binding:"required"`
	SKUName          string          `json:"skuName"`
	Quantity         int64           `json:"quantity" binding:"required"`
	UnitPrice        decimal.Decimal `json:"unitPrice" binding:"required"`
	ExpectedDelivery time.Time       `json:"expectedDelivery"`
	Remark           string          `json:"remark"`
}

// SubmitQuote is a supplier's complete quote submission.
type SubmitQuote struct {
	OrderNo      string      `json:"orderNo" binding:"required"`
	SupplierID   int64       `json:"supplierId" binding:"required"`
	SupplierName string      `json:"supplierName" binding:"required"`
	Lines        []QuoteLine `json:"lines" binding:"required"`
}

// ToSubmitQuoteInput converts the wire payload into the application input.
func ToSubmitQuoteInput(payload SubmitQuote) quotesports.SubmitQuoteInput {
	input := quotesports.SubmitQuoteInput{
		OrderNo:      payload.OrderNo,
		SupplierID:   payload.SupplierID,
		SupplierName: payload.SupplierName,
	}
	for _, line := range payload.Lines {
		input.Lines = append(input.Lines, quotesports.QuoteLineInput{
			OrderItemID:      line.OrderItemID,
			SKUID:            line.SKUID,
			SKUName:          line.SKUName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			ExpectedDelivery: line.ExpectedDelivery,
			Remark:           line.Remark,
		})
	}
	return input
}

// Inquiry is the wire shape of an inquiry round.
type Inquiry struct {
	InquiryNo   string    `json:"inquiryNo"`
	OrderNo     string    `json:"orderNo"`
	SupplierIDs []int64   `json:"supplierIds"`
	SKUIDs      []int64   `json:"skuIds,omitempty"`
	Deadline    time.Time `json:"deadline"`
	SentAt      time.Time `json:"sentAt"`
	Status      string    `json:"status"`
}

// FromInquiry renders a stored inquiry for the wire.
func FromInquiry(p *projection.Projection[*domain.Inquiry]) Inquiry {
	inquiry := p.Entity
	return Inquiry{
		InquiryNo:   inquiry.InquiryNo,
		OrderNo:     inquiry.OrderNo,
		SupplierIDs: inquiry.SupplierIDs,
		SKUIDs:      inquiry.SKUIDs,
		Deadline:    inquiry.Deadline,
		SentAt:      inquiry.SentAt,
		Status:      string(inquiry.Status),
	}
}

// QuoteLineView is the wire shape of one stored quote line.
type QuoteLineView struct {
	LineID           int64           `json:"lineId"`
	OrderItemID      int64           `json:"orderItemId,omitempty"`
	SKUID            int64           `json:"skuId"`
	SKUName          string          `json:"skuName"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	ExpectedDelivery time.Time       `json:"expectedDelivery"`
	Remark           string          `json:"remark,omitempty"`
}

// Quote is the wire shape of a supplier quote.
type Quote struct {
	QuoteNo      int64           `json:"quoteNo"`
	OrderNo      string          `json:"orderNo"`
	SupplierID   int64           `json:"supplierId"`
	SupplierName string          `json:"supplierName"`
	SubmittedAt  time.Time       `json:"submittedAt"`
	Lines        []QuoteLineView `json:"lines"`
}

// FromQuote renders a stored quote for the wire.
func FromQuote(p *projection.Projection[*domain.SupplierQuote]) Quote {
	quote := p.Entity
	out := Quote{
		QuoteNo:      quote.QuoteNo,
		OrderNo:      quote.OrderNo,
		SupplierID:   quote.SupplierID,
		SupplierName: quote.SupplierName,
		SubmittedAt:  quote.SubmittedAt,
		Lines:        make([]QuoteLineView, 0, len(quote.Lines)),
	}
	for _, line := range quote.Lines {
		out.Lines = append(out.Lines, QuoteLineView{
			LineID:           line.LineID,
			OrderItemID:      line.OrderItemID,
			SKUID:            line.SKUID,
			SKUName:          line.SKUName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			ExpectedDelivery: line.ExpectedDelivery,
			Remark:           line.Remark,
		})
	}
	return out
}

// FromQuoteList renders a quote listing.
func FromQuoteList(projections []*projection.Projection[*domain.SupplierQuote]) []Quote {
	quotes := make([]Quote, 0, len(projections))
	for _, p := range projections {
		quotes = append(quotes, FromQuote(p))
	}
	return quotes
}
