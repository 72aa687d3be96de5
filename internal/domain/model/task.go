package model

import "time"

// Task statuses as the Google Tasks API reports them.
const (
	RemoteStatusNeedsAction = "needsAction"
	RemoteStatusCompleted   = "completed"
)

// Task is a raw task-list entry as returned by the provider's tasks
// endpoint, before normalization into a CalendarItem.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Due       time.Time `json:"due,omitzero"`
	DueIsDate bool      `json:"-"`
	Status    string    `json:"status"`
	Completed bool      `json:"completed"`
	Updated   time.Time `json:"updated,omitzero"`
}

// Item normalizes the task into a CalendarItem. A bare-date due value
// spans the full day (start-of-day through end-of-day) for window-overlap
// purposes; a due value carrying a clock time is a point instant.
func (t Task) Item() CalendarItem {
	start := t.Due
	end := t.Due
	if t.DueIsDate {
		start = StartOfDay(t.Due)
		end = EndOfDay(t.Due)
	}

	status := StatusTodo
	if t.Completed {
		status = StatusDone
	}

	return CalendarItem{
		ID:        t.ID,
		Title:     t.Title,
		Start:     start,
		End:       end,
		Source:    SourceTask,
		Completed: t.Completed,
		Status:    status,
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
