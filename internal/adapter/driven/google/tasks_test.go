package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

func newTasksTestAdapter(t *testing.T, handler http.HandlerFunc) *TasksAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := tasks.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return NewTasksAdapter(svc)
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestTasksAdapter_ListTasks_BareDateDue(t *testing.T) {
	adapter := newTasksTestAdapter(t, jsonHandler(`{
		"items": [
			{
				"id": "t1",
				"title": "Prep slides",
				"due": "2024-01-22T00:00:00.000Z",
				"status": "needsAction"
			}
		]
	}`))

	got, err := adapter.ListTasks(context.Background(), "",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 23, 59, 59, 0, time.UTC),
		true,
	)
	require.NoError(t, err)
	require.Len(t, got, 1)

	task := got[0]
	assert.Equal(t, "t1", task.ID)
	assert.True(t, task.DueIsDate, "midnight-UTC due carries only date information")
	assert.False(t, task.Completed)

	// The normalized item spans the whole due day.
	item := task.Item()
	assert.True(t, item.Start.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 22, item.End.Day())
	assert.Equal(t, 23, item.End.Hour())
	assert.Equal(t, 59, item.End.Minute())
	assert.Equal(t, 59, item.End.Second())
}

func TestTasksAdapter_ListTasks_CompletedStatus(t *testing.T) {
	adapter := newTasksTestAdapter(t, jsonHandler(`{
		"items": [
			{"id": "t1", "title": "Done thing", "status": "completed"},
			{"id": "t2", "title": "Open thing", "status": "needsAction"}
		]
	}`))

	got, err := adapter.ListTasks(context.Background(), "",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		true,
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Completed)
	assert.False(t, got[1].Completed)
}

func TestTasksAdapter_ListTasks_Pagination(t *testing.T) {
	pages := []string{
		`{"items": [{"id": "t1", "title": "First", "status": "needsAction"}], "nextPageToken": "page2"}`,
		`{"items": [{"id": "t2", "title": "Second", "status": "needsAction"}]}`,
	}
	calls := 0
	adapter := newTasksTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		body := pages[0]
		if r.URL.Query().Get("pageToken") == "page2" {
			body = pages[1]
		}
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	got, err := adapter.ListTasks(context.Background(), "",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
}

func TestTasksAdapter_SetTaskCompleted(t *testing.T) {
	var gotMethod, gotStatus string
	adapter := newTasksTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		var body struct {
			Status string `json:"status"`
		}
		_ = jsonDecode(r, &body)
		gotStatus = body.Status

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "t1", "title": "Prep slides", "status": "completed"}`))
	})

	task, err := adapter.SetTaskCompleted(context.Background(), "", "t1", true)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "completed", gotStatus)
	assert.True(t, task.Completed)
}

func TestTasksAdapter_DeleteTask(t *testing.T) {
	var gotMethod string
	adapter := newTasksTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	err := adapter.DeleteTask(context.Background(), "", "t1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestTasksAdapter_DeleteTask_ProviderError(t *testing.T) {
	adapter := newTasksTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"code": 400, "message": "bad request"}}`, http.StatusBadRequest)
	})

	err := adapter.DeleteTask(context.Background(), "", "t1")
	assert.Error(t, err)
}
