// Package api boots the procurement HTTP API process.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	"github.com/partsflow/procurement-api/internal/app/bridge"
	approvalsmemory "github.com/partsflow/procurement-api/internal/domains/approvals/adapters/memory"
	approvalspostgres "github.com/partsflow/procurement-api/internal/domains/approvals/adapters/persistence/postgres"
	approvalsapp "github.com/partsflow/procurement-api/internal/domains/approvals/application"
	approvalsdomain "github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	approvalsports "github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	ordersmemory "github.com/partsflow/procurement-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/partsflow/procurement-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/partsflow/procurement-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/partsflow/procurement-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/partsflow/procurement-api/internal/domains/orders/application"
	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	ordersports "github.com/partsflow/procurement-api/internal/domains/orders/ports"
	quotesmemory "github.com/partsflow/procurement-api/internal/domains/quotes/adapters/memory"
	quotespostgres "github.com/partsflow/procurement-api/internal/domains/quotes/adapters/persistence/postgres"
	quotesapp "github.com/partsflow/procurement-api/internal/domains/quotes/application"
	quotesports "github.com/partsflow/procurement-api/internal/domains/quotes/ports"
	"github.com/partsflow/procurement-api/internal/platform/migrations"
	platformobservability "github.com/partsflow/procurement-api/internal/platform/observability"
	platformpostgres "github.com/partsflow/procurement-api/internal/platform/postgres"
	"github.com/partsflow/procurement-api/internal/transport/httpapi"
)

// Backends groups the persistence ports behind the three bounded contexts.
type Backends struct {
	Orders    ordersports.Repository
	Quotes    quotesports.Repository
	Approvals approvalsports.Repository
	Pricing   approvalsports.HistoricalPricing
}

// Run boots the procurement HTTP API with observability, repositories, and
// workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "procurement-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, cleanup := BuildBackends(ctx, cfg, logger)
	defer cleanup()

	orderService, approvalService, quoteService := WireServices(cfg, backends, logger,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, committing selections inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	cart := ordersapp.NewDraftCart(cfg.CartDebounceWindow, func(orderNo string, edits []orderstypes.QuantityEdit) {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := orderService.UpdateDraftQuantities(flushCtx, orderNo, edits); err != nil {
			logger.Warn("draft cart flush failed",
				slog.String("orderNo", orderNo),
				slog.Int("edits", len(edits)),
				slog.String("error", err.Error()),
			)
		}
	})
	defer cart.Stop()

	handlers := httpapi.APIHandlers{
		OrderAPI:    httpapi.NewOrderAPI(orderService, orderWorkflows, cart),
		QuoteAPI:    httpapi.NewQuoteAPI(quoteService),
		ApprovalAPI: httpapi.NewApprovalAPI(approvalService),
	}

	router := httpapi.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("Procurement API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Procurement API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// WireServices assembles the three context services and the bridges between
// them. The orders service options configure its observability decorator.
func WireServices(cfg Config, backends Backends, logger *slog.Logger, orderOpts ...ordersobs.Option) (ordersports.Service, approvalsports.Service, quotesports.Service) {
	committer := bridge.NewOrderCommitter()
	approvalService := approvalsapp.NewService(
		backends.Approvals,
		backends.Pricing,
		committer,
		approvalsdomain.ThresholdPolicy{Ratio: cfg.PriceThresholdRatio},
	)
	quoteService := quotesapp.NewService(backends.Quotes, bridge.NewOrderGate(backends.Orders))
	coreOrderService := ordersapp.NewService(
		backends.Orders,
		bridge.NewQuoteReader(quoteService),
		bridge.NewApprovalGateway(approvalService),
		bridge.NewLoggingNotifier(logger),
		ordersapp.WithUnselectedLinePolicy(cfg.UnselectedLinePolicy),
	)
	orderService := ordersobs.New(coreOrderService, orderOpts...)
	committer.Bind(orderService)
	return orderService, approvalService, quoteService
}

// BuildBackends connects to postgres when configured and falls back to the
// in-memory adapters otherwise.
func BuildBackends(ctx context.Context, cfg Config, logger *slog.Logger) (Backends, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryBackends(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryBackends(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		return memoryBackends(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryBackends(), func() {}
	}
	logger.Info("repositories configured with postgres")
	return Backends{
		Orders:    orderspostgres.NewRepository(db),
		Quotes:    quotespostgres.NewRepository(db),
		Approvals: approvalspostgres.NewRepository(db),
		Pricing:   approvalspostgres.NewPricing(db),
	}, func() { _ = sqlDB.Close() }
}

func memoryBackends() Backends {
	return Backends{
		Orders:    ordersmemory.NewRepository(),
		Quotes:    quotesmemory.NewRepository(),
		Approvals: approvalsmemory.NewRepository(),
		Pricing:   approvalsmemory.NewPricing(),
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
