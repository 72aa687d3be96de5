package application

import (
	"sync"

	"braindump/internal/domain/model"
)

// Overrides is the transient map of optimistic status values shown instead
// of the last-fetched authoritative status while a mutation is in flight or
// has failed. Entries are keyed and replaced per (user, item), never
// merged, so concurrent changes on different items cannot corrupt each
// other; a rapid double update of the same item resolves to last write
// wins. Overrides are never persisted.
type Overrides struct {
	mu sync.RWMutex
	m  map[string]model.ItemStatus
}

// NewOverrides creates an empty override registry.
func NewOverrides() *Overrides {
	return &Overrides{m: make(map[string]model.ItemStatus)}
}

func overrideKey(userID, itemID string) string {
	return userID + "\x00" + itemID
}

// Set records the pending status for an item.
func (o *Overrides) Set(userID, itemID string, status model.ItemStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.m[overrideKey(userID, itemID)] = status
}

// Get returns the pending status for an item, if any.
func (o *Overrides) Get(userID, itemID string) (model.ItemStatus, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status, ok := o.m[overrideKey(userID, itemID)]
	return status, ok
}

// Clear removes the override for an item.
func (o *Overrides) Clear(userID, itemID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.m, overrideKey(userID, itemID))
}
