package driven

import (
	"context"
	"time"

	"braindump/internal/domain/model"
)

// CalendarClient defines the driven port for reading a user's calendar.
type CalendarClient interface {
	// ListEvents returns events overlapping [timeMin, timeMax], with
	// recurring events expanded to concrete instances, ordered by start
	// time, normalized into event-sourced CalendarItems.
	ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]model.CalendarItem, error)
}

// TaskClient defines the driven port for reading and mutating a user's
// task list. tasklist selects the provider task list; an empty string
// means the default list.
type TaskClient interface {
	// ListTasks returns tasks whose due date falls in [dueMin, dueMax].
	ListTasks(ctx context.Context, tasklist string, dueMin, dueMax time.Time, showCompleted bool) ([]model.Task, error)

	// GetTask fetches a single task by id.
	GetTask(ctx context.Context, tasklist, id string) (model.Task, error)

	// CreateTask inserts a new task and returns the created resource.
	CreateTask(ctx context.Context, tasklist string, task model.Task) (model.Task, error)

	// SetTaskCompleted patches the task's status to completed or
	// needsAction and returns the updated resource.
	SetTaskCompleted(ctx context.Context, tasklist, id string, completed bool) (model.Task, error)

	// DeleteTask removes the task.
	DeleteTask(ctx context.Context, tasklist, id string) error
}

// ClientFactory builds authenticated provider clients for a user. Both
// constructors return (nil, nil) when the user has no stored credential;
// callers must treat that as "not connected", not as an error. Any token
// the provider issues mid-session is persisted through the CredentialStore
// before the triggering call's result is returned.
type ClientFactory interface {
	CalendarClient(ctx context.Context, userID string) (CalendarClient, error)
	TaskClient(ctx context.Context, userID string) (TaskClient, error)
}
