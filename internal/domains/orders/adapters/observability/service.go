package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	"github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

const tracerName = "github.com/partsflow/procurement-api/internal/domains/orders/adapters/observability/service"

// Service decorates an orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateDraft opens a new draft order with instrumentation.
func (s *Service) CreateDraft(ctx context.Context, input orderstypes.CreateDraftInput) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateDraft", attribute.Int("order.items", len(input.Items)))
	defer span.End()

	s.logInfo(ctx, "creating draft order", slog.String("creator", input.CreatorName), slog.Int("items", len(input.Items)))
	result, err := s.inner.CreateDraft(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create draft order")
	}
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "draft order created", slog.String("order.no", result.Order.OrderNo))
	return result, nil
}

// UpdateDraftQuantities applies a batch of quantity edits to a draft.
func (s *Service) UpdateDraftQuantities(ctx context.Context, orderNo string, edits []orderstypes.QuantityEdit) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateDraftQuantities",
		attribute.String("order.no", orderNo),
		attribute.Int("order.edits", len(edits)),
	)
	defer span.End()

	result, err := s.inner.UpdateDraftQuantities(ctx, orderNo, edits)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update draft quantities", slog.String("order.no", orderNo))
	}
	s.logInfo(ctx, "draft quantities updated", slog.String("order.no", orderNo), slog.Int("edits", len(edits)))
	return result, nil
}

// SubmitDraft moves a draft into the first approval gate.
func (s *Service) SubmitDraft(ctx context.Context, orderNo, operator string) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitDraft", attribute.String("order.no", orderNo))
	defer span.End()

	result, err := s.inner.SubmitDraft(ctx, orderNo, operator)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit draft", slog.String("order.no", orderNo))
	}
	s.recordTransition(ctx, span, result.Order.Status)
	s.logInfo(ctx, "draft submitted", slog.String("order.no", orderNo), slog.String("operator", operator))
	return result, nil
}

// ResolveDraftApproval records the first-gate approval decision.
func (s *Service) ResolveDraftApproval(ctx context.Context, orderNo, operator string, approved bool, remark string) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ResolveDraftApproval",
		attribute.String("order.no", orderNo),
		attribute.Bool("approved", approved),
	)
	defer span.End()

	result, err := s.inner.ResolveDraftApproval(ctx, orderNo, operator, approved, remark)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve draft approval", slog.String("order.no", orderNo))
	}
	s.recordTransition(ctx, span, result.Order.Status)
	s.logInfo(ctx, "draft approval resolved", slog.String("order.no", orderNo), slog.Bool("approved", approved))
	return result, nil
}

// SendInquiry opens the supplier inquiry window.
func (s *Service) SendInquiry(ctx context.Context, orderNo, operator string, deadline time.Time) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SendInquiry", attribute.String("order.no", orderNo))
	defer span.End()

	result, err := s.inner.SendInquiry(ctx, orderNo, operator, deadline)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to send inquiry", slog.String("order.no", orderNo))
	}
	s.recordTransition(ctx, span, result.Order.Status)
	s.logInfo(ctx, "inquiry sent", slog.String("order.no", orderNo), slog.Time("deadline", deadline))
	return result, nil
}

// CompleteInquiry closes the inquiry window.
func (s *Service) CompleteInquiry(ctx context.Context, orderNo, operator string) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CompleteInquiry", attribute.String("order.no", orderNo))
	defer span.End()

	result, err := s.inner.CompleteInquiry(ctx, orderNo, operator)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to complete inquiry", slog.String("order.no", orderNo))
	}
	s.recordTransition(ctx, span, result.Order.Status)
	s.logInfo(ctx, "inquiry completed", slog.String("order.no", orderNo))
	return result, nil
}

// GetOrderDetail loads an order with its reconciled quote matrix.
func (s *Service) GetOrderDetail(ctx context.Context, orderNo string) (*ports.OrderDetail, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrderDetail", attribute.String("order.no", orderNo))
	defer span.End()

	result, err := s.inner.GetOrderDetail(ctx, orderNo)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order detail", slog.String("order.no", orderNo))
	}
	span.SetAttributes(attribute.Int("order.lines", len(result.Lines)))
	return result, nil
}

// ListOrders returns projections matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter orderstypes.ListFilter) ([]*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders")
	defer span.End()

	result, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

// GetTimeline projects the order's status log into a display timeline.
func (s *Service) GetTimeline(ctx context.Context, orderNo string) ([]domain.TimelineEntry, error) {
	ctx, span := s.startSpan(ctx, "Service.GetTimeline", attribute.String("order.no", orderNo))
	defer span.End()

	result, err := s.inner.GetTimeline(ctx, orderNo)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load timeline", slog.String("order.no", orderNo))
	}
	return result, nil
}

// RecordChoice notes a provisional supplier choice for one line item.
func (s *Service) RecordChoice(ctx context.Context, orderNo string, pair orderstypes.SelectionPair) error {
	ctx, span := s.startSpan(ctx, "Service.RecordChoice",
		attribute.String("order.no", orderNo),
		attribute.Int64("order.item.id", pair.OrderItemID),
		attribute.Int64("quote.no", pair.QuoteNo),
	)
	defer span.End()

	if err := s.inner.RecordChoice(ctx, orderNo, pair); err != nil {
		return s.handleError(ctx, span, err, "failed to record choice", slog.String("order.no", orderNo))
	}
	return nil
}

// ClearChoices forgets every provisional choice for the order.
func (s *Service) ClearChoices(orderNo string) {
	s.inner.ClearChoices(orderNo)
}

// SubmitSelections commits supplier choices atomically.
func (s *Service) SubmitSelections(ctx context.Context, input orderstypes.SubmitSelectionsInput) (*orderstypes.SelectionOutcome, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitSelections",
		attribute.String("order.no", input.OrderNo),
		attribute.Int("order.pairs", len(input.Pairs)),
	)
	defer span.End()

	s.logInfo(ctx, "submitting selections", slog.String("order.no", input.OrderNo), slog.Int("pairs", len(input.Pairs)))
	result, err := s.inner.SubmitSelections(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit selections", slog.String("order.no", input.OrderNo))
	}
	span.SetAttributes(attribute.Bool("order.over_threshold", result.Decision.OverThreshold))
	s.metrics.recordSelectionCommitted(ctx, result.Decision.OverThreshold)
	s.recordTransition(ctx, span, result.Projection.Order.Status)
	s.logInfo(ctx, "selections committed",
		slog.String("order.no", input.OrderNo),
		slog.String("status", string(result.Projection.Order.Status)),
		slog.Bool("over_threshold", result.Decision.OverThreshold),
	)
	return result, nil
}

// ApplyApprovalOutcome moves a price-parked order forward.
func (s *Service) ApplyApprovalOutcome(ctx context.Context, orderNo, operator string, approved bool, remark string) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ApplyApprovalOutcome",
		attribute.String("order.no", orderNo),
		attribute.Bool("approved", approved),
	)
	defer span.End()

	result, err := s.inner.ApplyApprovalOutcome(ctx, orderNo, operator, approved, remark)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to apply approval outcome", slog.String("order.no", orderNo))
	}
	s.recordTransition(ctx, span, result.Order.Status)
	s.logInfo(ctx, "approval outcome applied", slog.String("order.no", orderNo), slog.Bool("approved", approved))
	return result, nil
}

// ConfirmArrival marks the referenced line items as arrived.
func (s *Service) ConfirmArrival(ctx context.Context, input orderstypes.ConfirmArrivalInput) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ConfirmArrival",
		attribute.String("order.no", input.OrderNo),
		attribute.Int("order.arrival.refs", len(input.QuoteRefs)),
	)
	defer span.End()

	result, err := s.inner.ConfirmArrival(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to confirm arrival", slog.String("order.no", input.OrderNo))
	}
	s.metrics.recordArrival(ctx, result.Order.Status == domain.StatusArrived)
	s.recordTransition(ctx, span, result.Order.Status)
	s.logInfo(ctx, "arrival confirmed",
		slog.String("order.no", input.OrderNo),
		slog.String("status", string(result.Order.Status)),
	)
	return result, nil
}

func (s *Service) recordTransition(ctx context.Context, span trace.Span, status domain.OrderStatus) {
	span.SetAttributes(attribute.String("order.status", string(status)))
	s.metrics.recordTransition(ctx, status)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated       metric.Int64Counter
	orderTransitions    metric.Int64Counter
	selectionsCommitted metric.Int64Counter
	arrivalsConfirmed   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of draft orders created"))
	orderTransitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of order status transitions"))
	selectionsCommitted, _ := m.Int64Counter("orders.service.selections", metric.WithDescription("Number of selection commits"))
	arrivalsConfirmed, _ := m.Int64Counter("orders.service.arrivals", metric.WithDescription("Number of arrival confirmations"))
	return serviceMetrics{
		ordersCreated:       ordersCreated,
		orderTransitions:    orderTransitions,
		selectionsCommitted: selectionsCommitted,
		arrivalsConfirmed:   arrivalsConfirmed,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1)
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.OrderStatus) {
	if m.orderTransitions == nil {
		return
	}
	m.orderTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
}

func (m serviceMetrics) recordSelectionCommitted(ctx context.Context, overThreshold bool) {
	if m.selectionsCommitted == nil {
		return
	}
	m.selectionsCommitted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("over_threshold", overThreshold)))
}

func (m serviceMetrics) recordArrival(ctx context.Context, complete bool) {
	if m.arrivalsConfirmed == nil {
		return
	}
	m.arrivalsConfirmed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("complete", complete)))
}
