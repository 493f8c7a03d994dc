package orders

import (
	"go.temporal.io/sdk/workflow"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/platform/temporal/sequences"
)

const (
	// SelectionCommitWorkflowName is the public identifier for registering the workflow.
	SelectionCommitWorkflowName = "orders.workflows.SelectionCommit"
	// SelectionCommitTaskQueue is the queue consumed by the worker processing order workflows.
	SelectionCommitTaskQueue = "ORDER_SELECTION"
)

// SelectionCommitWorkflowInput captures the payload required to commit a selection batch.
type SelectionCommitWorkflowInput struct {
	Command orderstypes.SubmitSelectionsInput
	TraceID string
}

// SelectionCommitWorkflow orchestrates the activities that bind supplier
// choices to an order and notify the winners.
func SelectionCommitWorkflow(ctx workflow.Context, input SelectionCommitWorkflowInput) (*orderstypes.SelectionOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SelectionCommitWorkflow started", withTraceID(input.TraceID, "orderNo", input.Command.OrderNo)...)
	outcome, err := sequences.RunSelectionCommitSequence(ctx, input.Command)
	if err != nil {
		logger.Error("SelectionCommitWorkflow failed", withTraceID(input.TraceID, "orderNo", input.Command.OrderNo, "error", err)...)
		return nil, err
	}
	logger.Info("SelectionCommitWorkflow completed", withTraceID(input.TraceID,
		"orderNo", input.Command.OrderNo,
		"status", string(outcome.Projection.Order.Status),
	)...)
	return outcome, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
