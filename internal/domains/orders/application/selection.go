package application

import (
	"sync"

	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

// SelectionSession keeps provisional supplier choices per order before the
// buyer commits them. Choices recorded here have no effect on the persisted
// aggregate; only an explicit submit does.
type SelectionSession struct {
	mu      sync.Mutex
	choices map[string]map[int64]domain.Selection
}

// NewSelectionSession builds an empty session store.
func NewSelectionSession() *SelectionSession {
	return &SelectionSession{choices: make(map[string]map[int64]domain.Selection)}
}

// Record notes a provisional choice for a line item, replacing any earlier
// choice for the same item.
func (s *SelectionSession) Record(orderNo string, itemID int64, sel domain.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	perOrder, ok := s.choices[orderNo]
	if !ok {
		perOrder = make(map[int64]domain.Selection)
		s.choices[orderNo] = perOrder
	}
	perOrder[itemID] = sel
}

// Remove drops the provisional choice for one line item.
func (s *SelectionSession) Remove(orderNo string, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perOrder, ok := s.choices[orderNo]; ok {
		delete(perOrder, itemID)
	}
}

// Snapshot returns a copy of the provisional choices for an order.
func (s *SelectionSession) Snapshot(orderNo string) map[int64]domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	perOrder := s.choices[orderNo]
	out := make(map[int64]domain.Selection, len(perOrder))
	for id, sel := range perOrder {
		out[id] = sel
	}
	return out
}

// Clear forgets all provisional choices for an order. Called after a commit
// so stale choices cannot leak into a later selection round.
func (s *SelectionSession) Clear(orderNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.choices, orderNo)
}
