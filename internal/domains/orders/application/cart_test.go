package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/partsflow/procurement-api/internal/domains/orders/application/types"
)

type flushRecorder struct {
	mu      sync.Mutex
	batches [][]types.QuantityEdit
	done    chan struct{}
}

func newFlushRecorder() *flushRecorder {
	return &flushRecorder{done: make(chan struct{}, 4)}
}

func (r *flushRecorder) flush(_ string, edits []types.QuantityEdit) {
	r.mu.Lock()
	r.batches = append(r.batches, edits)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *flushRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("flush never fired")
	}
}

func (r *flushRecorder) snapshot() [][]types.QuantityEdit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]types.QuantityEdit, len(r.batches))
	copy(out, r.batches)
	return out
}

func TestDraftCart_CollapsesRapidEdits(t *testing.T) {
	rec := newFlushRecorder()
	cart := NewDraftCart(20*time.Millisecond, rec.flush)
	defer cart.Stop()

	cart.Queue("PO1", types.QuantityEdit{ItemID: 2, Quantity: 3})
	cart.Queue("PO1", types.QuantityEdit{ItemID: 1, Quantity: 5})
	cart.Queue("PO1", types.QuantityEdit{ItemID: 1, Quantity: 9})

	rec.wait(t)
	batches := rec.snapshot()
	require.Len(t, batches, 1)
	require.Equal(t, []types.QuantityEdit{
		{ItemID: 1, Quantity: 9},
		{ItemID: 2, Quantity: 3},
	}, batches[0])
}

func TestDraftCart_FlushDrainsImmediately(t *testing.T) {
	rec := newFlushRecorder()
	cart := NewDraftCart(time.Hour, rec.flush)
	defer cart.Stop()

	cart.Queue("PO1", types.QuantityEdit{ItemID: 1, Quantity: 4})
	cart.Flush("PO1")

	rec.wait(t)
	require.Len(t, rec.snapshot(), 1)

	// Drained; a second flush is a no-op.
	cart.Flush("PO1")
	require.Len(t, rec.snapshot(), 1)
}

func TestDraftCart_StopCancelsPending(t *testing.T) {
	rec := newFlushRecorder()
	cart := NewDraftCart(20*time.Millisecond, rec.flush)

	cart.Queue("PO1", types.QuantityEdit{ItemID: 1, Quantity: 4})
	cart.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Empty(t, rec.snapshot())
}

func TestDraftCart_IsolatesOrders(t *testing.T) {
	rec := newFlushRecorder()
	cart := NewDraftCart(time.Hour, rec.flush)
	defer cart.Stop()

	cart.Queue("PO1", types.QuantityEdit{ItemID: 1, Quantity: 4})
	cart.Queue("PO2", types.QuantityEdit{ItemID: 1, Quantity: 7})
	cart.Flush("PO1")

	rec.wait(t)
	batches := rec.snapshot()
	require.Len(t, batches, 1)
	require.Equal(t, []types.QuantityEdit{{ItemID: 1, Quantity: 4}}, batches[0])
}
