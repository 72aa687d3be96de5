package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"braindump/internal/application"
	"braindump/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Kind carries the
// failure classification when one exists, so clients can distinguish
// re-authorize from retry.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFromKind maps a failure classification to its HTTP status.
func statusFromKind(kind application.Kind) int {
	switch kind {
	case application.KindNotConnected:
		return http.StatusUnauthorized
	case application.KindAuthorizationIncomplete:
		return http.StatusBadRequest
	case application.KindMutationRejected:
		return http.StatusUnprocessableEntity
	case application.KindTransientProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ItemResponse is the JSON representation of a merged calendar item.
type ItemResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Source    string `json:"source"`
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
}

// TaskResponse is the JSON representation of a raw task-list entry.
type TaskResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Due       string `json:"due,omitempty"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
	Updated   string `json:"updated,omitempty"`
}

// TaskDeletedResponse confirms a completed task delete.
type TaskDeletedResponse struct {
	Status string `json:"status"`
}

// ConnectionStatusResponse reports whether a Google credential is on file.
type ConnectionStatusResponse struct {
	Connected bool `json:"connected"`
}

// TranscriptionResponse carries the text recognized from an audio upload.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CreateTaskRequest is the JSON body for the create task endpoint. Due
// accepts either a bare date (2006-01-02) or a full RFC 3339 timestamp.
type CreateTaskRequest struct {
	Title    string `json:"title"`
	Notes    string `json:"notes,omitempty"`
	Due      string `json:"due,omitempty"`
	Tasklist string `json:"tasklist,omitempty"`
}

// UpdateTaskStatusRequest is the JSON body for the task status endpoint.
// PreviousStatus is the caller's last-known value, restored on failure.
type UpdateTaskStatusRequest struct {
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Tasklist       string `json:"tasklist,omitempty"`
}

// toItemResponse converts a merged calendar item to its JSON representation.
func toItemResponse(item model.CalendarItem) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Title:     item.Title,
		Start:     item.Start.UTC().Format(time.RFC3339),
		End:       item.End.UTC().Format(time.RFC3339),
		Source:    string(item.Source),
		Completed: item.Completed,
		Status:    string(item.Status),
	}
}

// toTaskResponse converts a raw task to its JSON representation.
func toTaskResponse(t model.Task) TaskResponse {
	resp := TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Notes:     t.Notes,
		Status:    t.Status,
		Completed: t.Completed,
	}
	if !t.Due.IsZero() {
		if t.DueIsDate {
			resp.Due = t.Due.UTC().Format(time.DateOnly)
		} else {
			resp.Due = t.Due.UTC().Format(time.RFC3339)
		}
	}
	if !t.Updated.IsZero() {
		resp.Updated = t.Updated.UTC().Format(time.RFC3339)
	}
	return resp
}
