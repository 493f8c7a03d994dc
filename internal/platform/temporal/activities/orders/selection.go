package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	ordersports "github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

const (
	// CommitSelectionActivityName binds supplier choices and advances the order.
	CommitSelectionActivityName = "orders.activities.CommitSelection"
	// NotifySuppliersActivityName informs winning suppliers after a commit.
	NotifySuppliersActivityName = "orders.activities.NotifySuppliers"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	commitService ordersports.Service
	repo          ordersports.Repository
	notifier      ordersports.SupplierNotifier
}

// NewActivities wires the orders collaborators into the Temporal activities bundle.
// commitService should be constructed without a notifier so the notification
// activity remains the single delivery path.
func NewActivities(commitService ordersports.Service, repo ordersports.Repository, notifier ordersports.SupplierNotifier) *Activities {
	return &Activities{
		commitService: commitService,
		repo:          repo,
		notifier:      notifier,
	}
}

// CommitSelection applies the selection batch atomically and returns the outcome.
func (a *Activities) CommitSelection(ctx context.Context, input orderstypes.SubmitSelectionsInput) (*orderstypes.SelectionOutcome, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.commitService == nil {
		logger.Error("selection commit activity not initialized", "orderNo", input.OrderNo)
		return nil, errors.New("selection commit activity not initialized")
	}
	logger.Info("CommitSelection activity started", "orderNo", input.OrderNo, "pairs", len(input.Pairs))
	outcome, err := a.commitService.SubmitSelections(ctx, input)
	if err != nil {
		logger.Error("CommitSelection activity failed", "orderNo", input.OrderNo, "error", err)
		return nil, err
	}
	logger.Info("CommitSelection activity completed",
		"orderNo", input.OrderNo,
		"status", string(outcome.Projection.Order.Status),
		"overThreshold", outcome.Decision.OverThreshold,
	)
	return outcome, nil
}

// NotifySuppliers loads the committed order and informs every winning supplier.
func (a *Activities) NotifySuppliers(ctx context.Context, orderNo string) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		logger.Error("supplier notify activity not initialized", "orderNo", orderNo)
		return errors.New("supplier notify activity not initialized")
	}
	if a.notifier == nil {
		logger.Info("supplier notifier not configured; skipping", "orderNo", orderNo)
		return nil
	}
	if a.repo == nil {
		logger.Error("order repository not configured for notify", "orderNo", orderNo)
		return errors.New("order repository not configured for notify")
	}

	var hb notifyHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("NotifySuppliers already completed in prior attempt; skipping", "orderNo", orderNo)
		return nil
	}

	logger.Info("NotifySuppliers activity started", "orderNo", orderNo)
	projection, err := a.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		logger.Error("NotifySuppliers failed to load order", "orderNo", orderNo, "error", err)
		return err
	}
	seen := make(map[int64]struct{})
	var quoteNos []int64
	for _, item := range projection.Order.Items {
		if item.Assigned() {
			if _, dup := seen[item.QuoteNo]; dup {
				continue
			}
			seen[item.QuoteNo] = struct{}{}
			quoteNos = append(quoteNos, item.QuoteNo)
		}
	}
	if len(quoteNos) == 0 {
		logger.Info("NotifySuppliers found no assigned quotes", "orderNo", orderNo)
		return nil
	}
	if err := a.notifier.NotifySelected(ctx, orderNo, quoteNos); err != nil {
		logger.Error("NotifySuppliers failed", "orderNo", orderNo, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, notifyHeartbeat{Completed: true})
	logger.Info("NotifySuppliers activity completed", "orderNo", orderNo, "quotes", len(quoteNos))
	return nil
}

type notifyHeartbeat struct {
	Completed bool
}
