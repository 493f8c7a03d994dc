package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyLines    = errors.New("a quote needs at least one priced line")
	ErrDuplicateLine = errors.New("quote already prices this SKU")
	ErrInvalidPrice  = errors.New("unit price must be greater than zero")
	ErrInvalidQty    = errors.New("quoted quantity must be greater than zero")
)

// QuoteLine is one priced SKU within a supplier quote. OrderItemID is set
// when the supplier quoted against a specific order line; zero means the
// match falls back to SKU identity downstream.
type QuoteLine struct {
	LineID           int64
	OrderItemID      int64
	SKUID            int64
	SKUName          string
	Quantity         int64
	UnitPrice        decimal.Decimal
	ExpectedDelivery time.Time
	Remark           string
}

// SupplierQuote is one supplier's complete answer to an inquiry. A supplier
// may resubmit; the quote number stays stable and lines are replaced.
type SupplierQuote struct {
	QuoteNo      int64
	OrderNo      string
	SupplierID   int64
	SupplierName string
	SubmittedAt  time.Time
	Lines        []QuoteLine
}

// AddLine appends a priced line, rejecting a second line for the same SKU.
func (q *SupplierQuote) AddLine(line QuoteLine) error {
	if line.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: sku %d", ErrInvalidPrice, line.SKUID)
	}
	if line.Quantity <= 0 {
		return fmt.Errorf("%w: sku %d", ErrInvalidQty, line.SKUID)
	}
	for _, existing := range q.Lines {
		if existing.SKUID == line.SKUID {
			return fmt.Errorf("%w: sku %d", ErrDuplicateLine, line.SKUID)
		}
	}
	q.Lines = append(q.Lines, line)
	return nil
}

// Validate checks the quote carries at least one line.
func (q *SupplierQuote) Validate() error {
	if len(q.Lines) == 0 {
		return ErrEmptyLines
	}
	return nil
}
