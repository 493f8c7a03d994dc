package ports

import (
	"context"
	"errors"
	"time"

	"github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists purchase order aggregates and their status log.
type Repository interface {
	// NextOrderNo issues a new order number for the given day.
	NextOrderNo(ctx context.Context, at time.Time) (string, error)
	Create(ctx context.Context, order *domain.PurchaseOrder) (*types.OrderProjection, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*types.OrderProjection, error)
	// Mutate loads the aggregate, applies fn under the store's write lock
	// and persists the result. fn returning an error aborts the mutation
	// with no partial write.
	Mutate(ctx context.Context, orderNo string, fn func(order *domain.PurchaseOrder) error) (*types.OrderProjection, error)
	List(ctx context.Context, filter types.ListFilter) ([]*types.OrderProjection, error)
	AppendStatusLog(ctx context.Context, orderNo string, entry domain.StatusLogEntry) error
	StatusLog(ctx context.Context, orderNo string) ([]domain.StatusLogEntry, error)
}
