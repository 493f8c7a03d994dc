package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	"github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	"github.com/partsflow/procurement-api/internal/shared/projection"
)

// ErrAlreadyResolved mirrors the domain sentinel at the application boundary
// so transports can map it without importing the domain package.
var ErrAlreadyResolved = domain.ErrAlreadyResolved

// Service orchestrates the approvals bounded context use cases.
type Service struct {
	repo      ports.Repository
	pricing   ports.HistoricalPricing
	committer ports.OrderCommitter
	policy    domain.ThresholdPolicy
	now       func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the approvals service with its dependencies. The
// committer may be nil when resolution feedback is wired elsewhere.
func NewService(repo ports.Repository, pricing ports.HistoricalPricing, committer ports.OrderCommitter, policy domain.ThresholdPolicy, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		pricing:   pricing,
		committer: committer,
		policy:    policy,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate compares the submitted total to the historical baseline under the
// configured threshold policy. The evaluation itself has no side effects.
func (s *Service) Evaluate(ctx context.Context, orderNo string, submittedTotal decimal.Decimal) (ports.Evaluation, error) {
	baseline, err := s.pricing.BaselineTotal(ctx, orderNo)
	if err != nil {
		return ports.Evaluation{}, err
	}
	deviation := s.policy.Evaluate(submittedTotal, baseline)
	return ports.Evaluation{
		SubmittedTotal:     submittedTotal,
		HistoricalAvgTotal: baseline,
		DeviationRatio:     deviation.Ratio,
		OverThreshold:      deviation.OverThreshold,
	}, nil
}

// Open creates a pending approval record for an over-threshold selection.
func (s *Service) Open(ctx context.Context, input ports.OpenApprovalInput) (*projection.Projection[*domain.ApprovalRecord], error) {
	record := domain.NewApprovalRecord(
		uuid.NewString(),
		input.OrderNo,
		input.RequestedBy,
		input.Evaluation.SubmittedTotal,
		input.Evaluation.HistoricalAvgTotal,
		input.Evaluation.DeviationRatio,
		s.now(),
	)
	return s.repo.Save(ctx, record)
}

// Resolve records the decision on a pending approval exactly once and feeds
// the outcome back into the orders context.
func (s *Service) Resolve(ctx context.Context, input ports.ResolveInput) (*projection.Projection[*domain.ApprovalRecord], error) {
	stored, err := s.repo.GetByNo(ctx, input.ApprovalNo)
	if err != nil {
		return nil, err
	}
	record := stored.Entity
	if input.Approved {
		err = record.Approve(input.ResolvedBy, input.Remark, s.now())
	} else {
		err = record.Reject(input.ResolvedBy, input.Remark, s.now())
	}
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, record)
	if err != nil {
		return nil, err
	}
	if s.committer != nil {
		if err := s.committer.ApplyApprovalOutcome(ctx, record.OrderNo, input.ResolvedBy, input.Approved, input.Remark); err != nil {
			return nil, fmt.Errorf("propagate approval outcome: %w", err)
		}
	}
	return saved, nil
}

// GetByNo loads one approval record.
func (s *Service) GetByNo(ctx context.Context, approvalNo string) (*projection.Projection[*domain.ApprovalRecord], error) {
	return s.repo.GetByNo(ctx, approvalNo)
}

// ListPending lists records still awaiting a decision.
func (s *Service) ListPending(ctx context.Context) ([]*projection.Projection[*domain.ApprovalRecord], error) {
	return s.repo.ListPending(ctx)
}

// IsAlreadyResolved reports whether the error stems from a duplicate
// resolution attempt.
func IsAlreadyResolved(err error) bool {
	return errors.Is(err, domain.ErrAlreadyResolved)
}

var _ ports.Service = (*Service)(nil)
