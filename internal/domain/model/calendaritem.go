package model

import (
	"strings"
	"time"
)

// ItemSource identifies which provider endpoint a CalendarItem came from.
type ItemSource string

const (
	SourceEvent ItemSource = "event"
	SourceTask  ItemSource = "task"
)

// ItemStatus is the local three-value task status. The provider only knows
// done / not-done; StatusInProgress exists purely as a client-side
// projection and is never written to the provider.
type ItemStatus string

const (
	StatusTodo       ItemStatus = "todo"
	StatusInProgress ItemStatus = "in_progress"
	StatusDone       ItemStatus = "done"

	// StatusDeleted marks an item optimistically removed while a remote
	// delete is in flight. It never appears in fetch results.
	StatusDeleted ItemStatus = "deleted"
)

// RemoteEquivalent reports whether the status can be represented in the
// provider's two-value vocabulary.
func (s ItemStatus) RemoteEquivalent() bool {
	return s == StatusTodo || s == StatusDone
}

// CalendarItem is the normalized, source-tagged shape produced by the
// fetcher for both calendar events and tasks. Items are ephemeral and
// recomputed on every fetch; they are never persisted.
type CalendarItem struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Source    ItemSource `json:"source"`
	Completed bool       `json:"completed"`
	Status    ItemStatus `json:"status"`
}

// Overlaps reports whether the item intersects the window [from, to].
// This is an overlap test, not containment: multi-day items partially
// inside the window are included.
func (c CalendarItem) Overlaps(from, to time.Time) bool {
	return !c.Start.After(to) && !c.End.Before(from)
}

// DedupKey returns the (date, normalized title) tuple used to detect
// calendar events that mirror a task-list item. The date is the
// UTC-truncated start day; the title is lower-cased and trimmed.
func (c CalendarItem) DedupKey() string {
	day := c.Start.UTC().Format("2006-01-02")
	return day + "|" + strings.ToLower(strings.TrimSpace(c.Title))
}
