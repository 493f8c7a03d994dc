package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/partsflow/procurement-api/internal/app/api"
	"github.com/partsflow/procurement-api/internal/app/bridge"
	approvalsapp "github.com/partsflow/procurement-api/internal/domains/approvals/application"
	approvalsdomain "github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	ordersapp "github.com/partsflow/procurement-api/internal/domains/orders/application"
	quotesapp "github.com/partsflow/procurement-api/internal/domains/quotes/application"
	platformobservability "github.com/partsflow/procurement-api/internal/platform/observability"
	orderactivities "github.com/partsflow/procurement-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/partsflow/procurement-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "procurement-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, cleanup := api.BuildBackends(ctx, cfg, logger)
	defer cleanup()

	// The commit service carries no notifier; the notify activity is the
	// single delivery path on this queue.
	committer := bridge.NewOrderCommitter()
	approvalService := approvalsapp.NewService(
		backends.Approvals,
		backends.Pricing,
		committer,
		approvalsdomain.ThresholdPolicy{Ratio: cfg.PriceThresholdRatio},
	)
	quoteService := quotesapp.NewService(backends.Quotes, bridge.NewOrderGate(backends.Orders))
	commitService := ordersapp.NewService(
		backends.Orders,
		bridge.NewQuoteReader(quoteService),
		bridge.NewApprovalGateway(approvalService),
		nil,
		ordersapp.WithUnselectedLinePolicy(cfg.UnselectedLinePolicy),
	)
	committer.Bind(commitService)
	activities := orderactivities.NewActivities(commitService, backends.Orders, bridge.NewLoggingNotifier(logger))

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.SelectionCommitTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.SelectionCommitWorkflow, workflow.RegisterOptions{Name: orderworkflows.SelectionCommitWorkflowName})
	w.RegisterActivityWithOptions(activities.CommitSelection, activity.RegisterOptions{Name: orderactivities.CommitSelectionActivityName})
	w.RegisterActivityWithOptions(activities.NotifySuppliers, activity.RegisterOptions{Name: orderactivities.NotifySuppliersActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.SelectionCommitTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
