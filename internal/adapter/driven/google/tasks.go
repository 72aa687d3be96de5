package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/tasks/v1"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TaskClient = (*TasksAdapter)(nil)

// defaultTasklist is the provider alias for the user's default task list.
const defaultTasklist = "@default"

// TasksAdapter implements the TaskClient port on the Google Tasks API.
type TasksAdapter struct {
	svc *tasks.Service
}

// NewTasksAdapter creates a TasksAdapter.
func NewTasksAdapter(svc *tasks.Service) *TasksAdapter {
	return &TasksAdapter{svc: svc}
}

// ListTasks returns tasks whose due date falls in [dueMin, dueMax],
// following pagination. Completed tasks are hidden by the provider unless
// explicitly requested.
func (t *TasksAdapter) ListTasks(ctx context.Context, tasklist string, dueMin, dueMax time.Time, showCompleted bool) ([]model.Task, error) {
	var out []model.Task
	pageToken := ""

	for {
		call := t.svc.Tasks.List(resolveList(tasklist)).
			DueMin(dueMin.Format(time.RFC3339)).
			DueMax(dueMax.Format(time.RFC3339)).
			ShowCompleted(showCompleted).
			ShowHidden(showCompleted).
			MaxResults(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}

		for _, item := range resp.Items {
			out = append(out, mapTask(item))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return out, nil
}

// GetTask fetches a single task by id.
func (t *TasksAdapter) GetTask(ctx context.Context, tasklist, id string) (model.Task, error) {
	item, err := t.svc.Tasks.Get(resolveList(tasklist), id).Context(ctx).Do()
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %q: %w", id, err)
	}
	return mapTask(item), nil
}

// CreateTask inserts a new task.
func (t *TasksAdapter) CreateTask(ctx context.Context, tasklist string, task model.Task) (model.Task, error) {
	payload := &tasks.Task{
		Title: task.Title,
		Notes: task.Notes,
	}
	if !task.Due.IsZero() {
		payload.Due = task.Due.UTC().Format(time.RFC3339)
	}

	created, err := t.svc.Tasks.Insert(resolveList(tasklist), payload).Context(ctx).Do()
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return mapTask(created), nil
}

// SetTaskCompleted patches the task's status. The provider clears its
// completion timestamp itself when status moves back to needsAction.
func (t *TasksAdapter) SetTaskCompleted(ctx context.Context, tasklist, id string, completed bool) (model.Task, error) {
	status := model.RemoteStatusNeedsAction
	if completed {
		status = model.RemoteStatusCompleted
	}

	updated, err := t.svc.Tasks.Patch(resolveList(tasklist), id, &tasks.Task{Status: status}).Context(ctx).Do()
	if err != nil {
		return model.Task{}, fmt.Errorf("patch task %q: %w", id, err)
	}
	return mapTask(updated), nil
}

// DeleteTask removes the task.
func (t *TasksAdapter) DeleteTask(ctx context.Context, tasklist, id string) error {
	if err := t.svc.Tasks.Delete(resolveList(tasklist), id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete task %q: %w", id, err)
	}
	return nil
}

func resolveList(tasklist string) string {
	if tasklist == "" {
		return defaultTasklist
	}
	return tasklist
}

// mapTask normalizes a provider task. The Tasks API records only date
// information in due (the clock is always midnight UTC), so a midnight due
// is flagged as a bare date; anything carrying a clock time is a point
// instant.
func mapTask(item *tasks.Task) model.Task {
	task := model.Task{
		ID:        item.Id,
		Title:     item.Title,
		Notes:     item.Notes,
		Status:    item.Status,
		Completed: item.Status == model.RemoteStatusCompleted,
	}

	if item.Due != "" {
		if due, err := time.Parse(time.RFC3339, item.Due); err == nil {
			task.Due = due
			utc := due.UTC()
			task.DueIsDate = utc.Hour() == 0 && utc.Minute() == 0 && utc.Second() == 0 && utc.Nanosecond() == 0
		}
	}
	if item.Updated != "" {
		if updated, err := time.Parse(time.RFC3339, item.Updated); err == nil {
			task.Updated = updated
		}
	}

	return task
}
