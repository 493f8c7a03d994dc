package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	"github.com/partsflow/procurement-api/internal/domains/quotes/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

// ErrInvalidQuote signals the submission violated a quote invariant.
var ErrInvalidQuote = errors.New("invalid quote input")

// ErrInquiryNotOpen signals the order has no open inquiry round or the round
// no longer accepts quotes.
var ErrInquiryNotOpen = errors.New("inquiry not open for quotes")

// Service orchestrates the quotes bounded context use cases.
type Service struct {
	repo ports.Repository
	gate ports.OrderGate
	now  func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the quotes service with its dependencies.
func NewService(repo ports.Repository, gate ports.OrderGate, opts ...Option) *Service {
	s := &Service{repo: repo, gate: gate, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenInquiry starts a request-for-quote round for an order. One open round
// per order at a time.
func (s *Service) OpenInquiry(ctx context.Context, input ports.OpenInquiryInput) (*projection.Projection[*domain.Inquiry], error) {
	if existing, err := s.repo.OpenInquiryByOrder(ctx, input.OrderNo); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrAlreadyInquired, input.OrderNo)
	} else if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	inquiry, err := domain.NewInquiry(uuid.NewString(), input.OrderNo, input.SupplierIDs, input.SKUIDs, input.Deadline, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuote, err)
	}
	return s.repo.SaveInquiry(ctx, inquiry)
}

// CloseInquiry ends the order's open round. Quotes submitted afterwards are
// rejected.
func (s *Service) CloseInquiry(ctx context.Context, orderNo string) error {
	return s.repo.CloseInquiry(ctx, orderNo)
}

// SubmitQuote records a supplier's priced answer to an open inquiry. The
// orders context must confirm the order still accepts quotes.
func (s *Service) SubmitQuote(ctx context.Context, input ports.SubmitQuoteInput) (*projection.Projection[*domain.SupplierQuote], error) {
	if err := s.gate.CanAcceptQuotes(ctx, input.OrderNo); err != nil {
		return nil, err
	}
	inquiry, err := s.repo.OpenInquiryByOrder(ctx, input.OrderNo)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrInquiryNotOpen, input.OrderNo)
		}
		return nil, err
	}
	now := s.now()
	if err := inquiry.Entity.AcceptsQuotes(now); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInquiryNotOpen, err)
	}
	quote := &domain.SupplierQuote{
		OrderNo:      input.OrderNo,
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		SubmittedAt:  now,
	}
	for _, line := range input.Lines {
		err := quote.AddLine(domain.QuoteLine{
			OrderItemID:      line.OrderItemID,
			SKUID:            line.SKUID,
			SKUName:          line.SKUName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			ExpectedDelivery: line.ExpectedDelivery,
			Remark:           line.Remark,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuote, err)
		}
	}
	if err := quote.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuote, err)
	}
	return s.repo.SaveQuote(ctx, quote)
}

// QuotesByOrder lists every supplier quote submitted against the order.
func (s *Service) QuotesByOrder(ctx context.Context, orderNo string) ([]*projection.Projection[*domain.SupplierQuote], error) {
	return s.repo.QuotesByOrder(ctx, orderNo)
}

var _ ports.Service = (*Service)(nil)
