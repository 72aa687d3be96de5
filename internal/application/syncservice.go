package application

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// SyncService retrieves a user's events and tasks for a date window from
// the provider's two independently-paged endpoints, normalizes them into
// CalendarItems, removes event mirrors of task items, and projects pending
// optimistic overrides onto the result.
type SyncService struct {
	clients   driven.ClientFactory
	overrides *Overrides
	tasklist  string
	timeout   time.Duration
}

// NewSyncService creates a SyncService. tasklist selects the provider task
// list ("" for the default); timeout bounds each provider call.
func NewSyncService(clients driven.ClientFactory, overrides *Overrides, tasklist string, timeout time.Duration) *SyncService {
	return &SyncService{
		clients:   clients,
		overrides: overrides,
		tasklist:  tasklist,
		timeout:   timeout,
	}
}

// FetchItems returns the merged, deduplicated calendar-item view for the
// window [from, to]. The events and tasks fetches run concurrently and
// degrade independently: one side failing empties only that source; the
// combined fetch fails only when both sides fail.
func (s *SyncService) FetchItems(ctx context.Context, userID string, from, to time.Time, maxResults int64) ([]model.CalendarItem, error) {
	calClient, taskClient, err := s.connectedClients(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		wg        sync.WaitGroup
		events    []model.CalendarItem
		tasks     []model.Task
		eventsErr error
		tasksErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		events, eventsErr = calClient.ListEvents(callCtx, from, to, maxResults)
	}()
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		// Widen the due range to whole days; a bare-date due spans its
		// full day, so the precise overlap filter below decides inclusion.
		tasks, tasksErr = taskClient.ListTasks(callCtx, s.tasklist, model.StartOfDay(from), model.EndOfDay(to), true)
	}()
	wg.Wait()

	if eventsErr != nil && tasksErr != nil {
		return nil, classify(eventsErr, false)
	}
	if eventsErr != nil {
		slog.Warn("events fetch degraded to empty", "user_id", userID, "error", eventsErr)
		events = nil
	}
	if tasksErr != nil {
		slog.Warn("tasks fetch degraded to empty", "user_id", userID, "error", tasksErr)
		tasks = nil
	}

	combined := make([]model.CalendarItem, 0, len(events)+len(tasks))
	for _, ev := range events {
		if ev.Overlaps(from, to) {
			combined = append(combined, ev)
		}
	}
	for _, t := range tasks {
		if item := t.Item(); item.Overlaps(from, to) {
			combined = append(combined, item)
		}
	}

	deduped := Dedupe(combined)
	projected := s.project(userID, deduped)

	sort.SliceStable(projected, func(i, j int) bool {
		return projected[i].Start.Before(projected[j].Start)
	})
	return projected, nil
}

// FetchEvents returns the normalized event-sourced items for the window.
func (s *SyncService) FetchEvents(ctx context.Context, userID string, from, to time.Time, maxResults int64) ([]model.CalendarItem, error) {
	client, err := s.clients.CalendarClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, NewError(KindNotConnected, "no google credential for user", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	events, err := client.ListEvents(callCtx, from, to, maxResults)
	if err != nil {
		return nil, classify(err, false)
	}
	return events, nil
}

// FetchTasks returns raw tasks whose due date falls in [dueMin, dueMax].
func (s *SyncService) FetchTasks(ctx context.Context, userID string, dueMin, dueMax time.Time, showCompleted bool) ([]model.Task, error) {
	client, err := s.clients.TaskClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, NewError(KindNotConnected, "no google credential for user", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	tasks, err := client.ListTasks(callCtx, s.tasklist, dueMin, dueMax, showCompleted)
	if err != nil {
		return nil, classify(err, false)
	}
	return tasks, nil
}

// connectedClients builds both clients, mapping an absent credential to
// KindNotConnected.
func (s *SyncService) connectedClients(ctx context.Context, userID string) (driven.CalendarClient, driven.TaskClient, error) {
	calClient, err := s.clients.CalendarClient(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	taskClient, err := s.clients.TaskClient(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if calClient == nil || taskClient == nil {
		return nil, nil, NewError(KindNotConnected, "no google credential for user", nil)
	}
	return calClient, taskClient, nil
}

// project applies pending overrides to fetched items. Items with an
// in-flight delete are hidden; once an authoritative fetch no longer
// contains a deleted item its marker has already been cleared by the
// mutation path. Status overrides replace the authoritative status so the
// richer local vocabulary survives the provider's two-value model.
func (s *SyncService) project(userID string, items []model.CalendarItem) []model.CalendarItem {
	out := make([]model.CalendarItem, 0, len(items))
	for _, item := range items {
		if status, ok := s.overrides.Get(userID, item.ID); ok {
			if status == model.StatusDeleted {
				continue
			}
			item.Status = status
			item.Completed = status == model.StatusDone
		}
		out = append(out, item)
	}
	return out
}
