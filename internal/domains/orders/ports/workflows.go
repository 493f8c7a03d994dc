package ports

import (
	"context"

	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the
// orders bounded context.
type WorkflowOrchestrator interface {
	CommitSelection(ctx context.Context, input orderstypes.SubmitSelectionsInput) (*orderstypes.SelectionOutcome, error)
}
