package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	orderactivities "github.com/partsflow/procurement-api/internal/platform/temporal/activities/orders"
)

// RunSelectionCommitSequence executes the ordered set of activities that
// commit a selection batch and notify the winning suppliers.
func RunSelectionCommitSequence(ctx workflow.Context, input orderstypes.SubmitSelectionsInput) (*orderstypes.SelectionOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("selection commit sequence started", "orderNo", input.OrderNo, "pairs", len(input.Pairs))
	commitOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	notifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var outcome orderstypes.SelectionOutcome
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, commitOptions), orderactivities.CommitSelectionActivityName, input).Get(ctx, &outcome)
	if err != nil {
		logger.Error("selection commit sequence failed", "orderNo", input.OrderNo, "error", err)
		return nil, err
	}
	logger.Info("selection commit sequence committed",
		"orderNo", input.OrderNo,
		"overThreshold", outcome.Decision.OverThreshold,
	)

	// An over-threshold commit parks behind a price approval; suppliers are
	// only told once the order actually reaches ORDERED.
	if !outcome.Decision.OverThreshold {
		if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, notifyOptions), orderactivities.NotifySuppliersActivityName, input.OrderNo).Get(ctx, nil); err != nil {
			logger.Error("selection commit sequence notify failed", "orderNo", input.OrderNo, "error", err)
			return &outcome, err
		}
		logger.Info("selection commit sequence notified suppliers", "orderNo", input.OrderNo)
	}
	return &outcome, nil
}
