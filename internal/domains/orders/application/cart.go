package application

import (
	"sort"
	"sync"
	"time"

	"github.com/partsflow/procurement-api/internal/domains/orders/application/types"
)

// DraftCart coalesces rapid quantity edits on a draft order and flushes them
// as one batch once the edits go quiet. Repeated edits to the same line item
// within the window collapse to the last value.
type DraftCart struct {
	window time.Duration
	flush  func(orderNo string, edits []types.QuantityEdit)

	mu      sync.Mutex
	pending map[string]map[int64]int64
	timers  map[string]*time.Timer
}

// NewDraftCart builds a cart that calls flush after window of inactivity per
// order. The flush callback runs on a timer goroutine.
func NewDraftCart(window time.Duration, flush func(orderNo string, edits []types.QuantityEdit)) *DraftCart {
	return &DraftCart{
		window:  window,
		flush:   flush,
		pending: make(map[string]map[int64]int64),
		timers:  make(map[string]*time.Timer),
	}
}

// Queue records an edit and restarts the order's quiet-period timer.
func (c *DraftCart) Queue(orderNo string, edit types.QuantityEdit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	perOrder, ok := c.pending[orderNo]
	if !ok {
		perOrder = make(map[int64]int64)
		c.pending[orderNo] = perOrder
	}
	perOrder[edit.ItemID] = edit.Quantity
	if timer, ok := c.timers[orderNo]; ok {
		timer.Stop()
	}
	c.timers[orderNo] = time.AfterFunc(c.window, func() {
		c.Flush(orderNo)
	})
}

// Flush drains pending edits for the order and invokes the flush callback
// immediately. Safe to call when nothing is pending.
func (c *DraftCart) Flush(orderNo string) {
	c.mu.Lock()
	perOrder := c.pending[orderNo]
	delete(c.pending, orderNo)
	if timer, ok := c.timers[orderNo]; ok {
		timer.Stop()
		delete(c.timers, orderNo)
	}
	c.mu.Unlock()

	if len(perOrder) == 0 {
		return
	}
	edits := make([]types.QuantityEdit, 0, len(perOrder))
	for itemID, quantity := range perOrder {
		edits = append(edits, types.QuantityEdit{ItemID: itemID, Quantity: quantity})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].ItemID < edits[j].ItemID })
	c.flush(orderNo, edits)
}

// Stop cancels every pending timer without flushing. Used on shutdown.
func (c *DraftCart) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for orderNo, timer := range c.timers {
		timer.Stop()
		delete(c.timers, orderNo)
	}
	c.pending = make(map[string]map[int64]int64)
}
