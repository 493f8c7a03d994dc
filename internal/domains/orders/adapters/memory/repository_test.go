package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
	"github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

func newStoredOrder(t *testing.T, repo *Repository, orderNo, creator string) *domain.PurchaseOrder {
	t.Helper()
	order, err := domain.NewPurchaseOrder(orderNo, "Downtown Garage", creator,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "", []domain.LineItemSpec{
			{SKUID: 101, SKUName: "Brake Pad", Quantity: 4},
		})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), order)
	require.NoError(t, err)
	return order
}

func TestNextOrderNo_PerDaySequence(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	day1 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	first, err := repo.NextOrderNo(ctx, day1)
	require.NoError(t, err)
	second, err := repo.NextOrderNo(ctx, day1)
	require.NoError(t, err)
	nextDay, err := repo.NextOrderNo(ctx, day2)
	require.NoError(t, err)

	require.Equal(t, "PO20260115001", first)
	require.Equal(t, "PO20260115002", second)
	require.Equal(t, "PO20260116001", nextDay)
}

func TestCreate_RejectsDuplicateOrderNo(t *testing.T) {
	repo := NewRepository()
	order := newStoredOrder(t, repo, "PO1", "alex")

	_, err := repo.Create(context.Background(), order)
	require.Error(t, err)
}

func TestMutate_FailedCallbackLeavesStoreUntouched(t *testing.T) {
	repo := NewRepository()
	newStoredOrder(t, repo, "PO1", "alex")
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := repo.Mutate(ctx, "PO1", func(order *domain.PurchaseOrder) error {
		order.Status = domain.StatusOrdered
		order.Items[0].Quantity = 99
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByOrderNo(ctx, "PO1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDraft, stored.Order.Status)
	require.Equal(t, int64(4), stored.Order.Items[0].Quantity)
}

func TestMutate_ProjectionIsDetached(t *testing.T) {
	repo := NewRepository()
	newStoredOrder(t, repo, "PO1", "alex")
	ctx := context.Background()

	projection, err := repo.GetByOrderNo(ctx, "PO1")
	require.NoError(t, err)
	projection.Order.Items[0].Quantity = 99

	fresh, err := repo.GetByOrderNo(ctx, "PO1")
	require.NoError(t, err)
	require.Equal(t, int64(4), fresh.Order.Items[0].Quantity)
}

func TestGetByOrderNo_NotFound(t *testing.T) {
	repo := NewRepository()
	_, err := repo.GetByOrderNo(context.Background(), "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestList_FiltersAndSorts(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	repo := NewRepositoryWithClock(func() time.Time { return now })
	ctx := context.Background()
	newStoredOrder(t, repo, "PO2", "alex")
	newStoredOrder(t, repo, "PO1", "kim")

	all, err := repo.List(ctx, types.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Same CreatedAt, so order number breaks the tie.
	require.Equal(t, "PO1", all[0].Order.OrderNo)
	require.Equal(t, "PO2", all[1].Order.OrderNo)

	byCreator, err := repo.List(ctx, types.ListFilter{CreatorName: "kim"})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	require.Equal(t, "PO1", byCreator[0].Order.OrderNo)

	none, err := repo.List(ctx, types.ListFilter{Statuses: []domain.OrderStatus{domain.StatusOrdered}})
	require.NoError(t, err)
	require.Empty(t, none)

	window, err := repo.List(ctx, types.ListFilter{CreatedFrom: now.Add(time.Hour)})
	require.NoError(t, err)
	require.Empty(t, window)
}

func TestStatusLog_AppendAndCopy(t *testing.T) {
	repo := NewRepository()
	newStoredOrder(t, repo, "PO1", "alex")
	ctx := context.Background()

	entry := domain.StatusLogEntry{
		From:     domain.StatusDraft,
		To:       domain.StatusPendingApproval,
		Operator: "alex",
		At:       time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.AppendStatusLog(ctx, "PO1", entry))
	require.ErrorIs(t, repo.AppendStatusLog(ctx, "missing", entry), ports.ErrNotFound)

	log, err := repo.StatusLog(ctx, "PO1")
	require.NoError(t, err)
	require.Len(t, log, 1)

	// The returned slice is a copy.
	log[0].Operator = "intruder"
	fresh, err := repo.StatusLog(ctx, "PO1")
	require.NoError(t, err)
	require.Equal(t, "alex", fresh[0].Operator)
}
