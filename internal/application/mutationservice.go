package application

import (
	"context"
	"log/slog"
	"time"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// MutationService applies status changes and deletes to externally-sourced
// tasks optimistically: the override registry is updated before the remote
// call so the caller's view changes instantly, and rolled back to the
// pre-mutation value if the provider rejects the write.
type MutationService struct {
	clients   driven.ClientFactory
	overrides *Overrides
	tasklist  string
	timeout   time.Duration
}

// NewMutationService creates a MutationService.
func NewMutationService(clients driven.ClientFactory, overrides *Overrides, tasklist string, timeout time.Duration) *MutationService {
	return &MutationService{
		clients:   clients,
		overrides: overrides,
		tasklist:  tasklist,
		timeout:   timeout,
	}
}

// CreateTask inserts a new task. Creation has no prior local view, so no
// optimistic state is involved.
func (s *MutationService) CreateTask(ctx context.Context, userID, tasklist string, task model.Task) (model.Task, error) {
	client, err := s.taskClient(ctx, userID)
	if err != nil {
		return model.Task{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := client.CreateTask(callCtx, s.resolveTasklist(tasklist), task)
	if err != nil {
		return model.Task{}, classify(err, true)
	}
	return created, nil
}

// UpdateTaskStatus transitions a task to the given local status. The
// override is written first; the provider sees only the two-value
// done/not-done projection. On success an authoritative re-fetch clears
// the override, except for in_progress, which has no remote equivalent
// and remains a pure client-side projection. On failure the override is
// replaced with previous (not cleared), so the item stays visibly stable
// at its last-known-good value.
func (s *MutationService) UpdateTaskStatus(ctx context.Context, userID, tasklist, taskID string, status, previous model.ItemStatus) (model.Task, error) {
	s.overrides.Set(userID, taskID, status)

	client, err := s.taskClient(ctx, userID)
	if err != nil {
		s.rollback(userID, taskID, previous)
		return model.Task{}, err
	}

	list := s.resolveTasklist(tasklist)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	updated, err := client.SetTaskCompleted(callCtx, list, taskID, status == model.StatusDone)
	if err != nil {
		s.rollback(userID, taskID, previous)
		return model.Task{}, classify(err, true)
	}

	// Authoritative re-fetch; the stale local value must not outlive it.
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	fresh, err := client.GetTask(fetchCtx, list, taskID)
	if err != nil {
		// The mutation itself succeeded; keep the override pending until
		// the next authoritative read and report success.
		slog.Warn("post-mutation refetch failed, override kept", "task_id", taskID, "error", err)
		return updated, nil
	}

	if status.RemoteEquivalent() {
		s.overrides.Clear(userID, taskID)
	}
	return fresh, nil
}

// DeleteTask removes a task, hiding it optimistically while the remote
// delete is in flight. A failed delete restores the previous status so the
// item remains fully intact and visible.
func (s *MutationService) DeleteTask(ctx context.Context, userID, tasklist, taskID string, previous model.ItemStatus) error {
	s.overrides.Set(userID, taskID, model.StatusDeleted)

	client, err := s.taskClient(ctx, userID)
	if err != nil {
		s.rollback(userID, taskID, previous)
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := client.DeleteTask(callCtx, s.resolveTasklist(tasklist), taskID); err != nil {
		s.rollback(userID, taskID, previous)
		return classify(err, true)
	}

	// Provider confirmed the delete; the next fetch is authoritative.
	s.overrides.Clear(userID, taskID)
	return nil
}

// rollback replaces the override with the pre-mutation status, or clears
// it when the caller supplied none (the authoritative value is then the
// last-known-good one).
func (s *MutationService) rollback(userID, taskID string, previous model.ItemStatus) {
	if previous == "" {
		s.overrides.Clear(userID, taskID)
		return
	}
	s.overrides.Set(userID, taskID, previous)
}

func (s *MutationService) taskClient(ctx context.Context, userID string) (driven.TaskClient, error) {
	client, err := s.clients.TaskClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, NewError(KindNotConnected, "no google credential for user", nil)
	}
	return client, nil
}

func (s *MutationService) resolveTasklist(tasklist string) string {
	if tasklist != "" {
		return tasklist
	}
	return s.tasklist
}
