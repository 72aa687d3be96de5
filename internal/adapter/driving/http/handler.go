// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"braindump/internal/application"
	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// maxAudioUpload bounds transcription uploads.
const maxAudioUpload = 25 << 20

var (
	errInvalidWindowBound = errors.New("invalid from/to: expected 2006-01-02 or RFC 3339")
	errWindowInverted     = errors.New("invalid window: to precedes from")
	errInvalidMaxResults  = errors.New("invalid max_results")
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	auth          *application.AuthService
	sync          *application.SyncService
	mutations     *application.MutationService
	organizer     driven.Organizer
	transcriber   driven.Transcriber
	sessionSecret []byte
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	auth *application.AuthService,
	sync *application.SyncService,
	mutations *application.MutationService,
	organizer driven.Organizer,
	transcriber driven.Transcriber,
	sessionSecret []byte,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:          auth,
		sync:          sync,
		mutations:     mutations,
		organizer:     organizer,
		transcriber:   transcriber,
		sessionSecret: sessionSecret,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return requireSession(h.sessionSecret, next)
	}

	mux.HandleFunc("GET /api/v1/auth/google/start", h.StartAuth)
	mux.HandleFunc("GET /api/v1/auth/google/callback", h.AuthCallback)
	mux.HandleFunc("GET /api/v1/auth/google/status", authed(h.AuthStatus))

	mux.HandleFunc("GET /api/v1/calendar/items", authed(h.ListItems))
	mux.HandleFunc("GET /api/v1/calendar/events", authed(h.ListEvents))
	mux.HandleFunc("GET /api/v1/calendar/tasks", authed(h.ListTasks))

	mux.HandleFunc("POST /api/v1/tasks", authed(h.CreateTask))
	mux.HandleFunc("PATCH /api/v1/tasks/{id}", authed(h.UpdateTaskStatus))
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", authed(h.DeleteTask))

	mux.HandleFunc("POST /api/v1/organize", authed(h.Organize))
	mux.HandleFunc("POST /api/v1/transcribe", authed(h.Transcribe))

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// StartAuth redirects to the provider consent screen. A valid session is
// optional here: connecting an existing account threads its user id through
// the signed state, a first-time connection starts with an empty one.
func (h *Handler) StartAuth(w http.ResponseWriter, r *http.Request) {
	var userID string
	if session, ok := bearerSession(h.sessionSecret, r); ok {
		userID = session.UserID
	}

	consentURL, err := h.auth.Start(userID)
	if err != nil {
		h.logger.Error("failed to build consent url", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.Redirect(w, r, consentURL, http.StatusFound)
}

// AuthCallback completes the authorization flow and redirects to the
// frontend with the session token.
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	redirect, err := h.auth.Callback(r.Context(), code, state)
	if err != nil {
		h.writeServiceError(w, err, "authorization callback failed")
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

// AuthStatus reports whether the user has a Google credential on file.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	connected, err := h.auth.Status(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error("failed to check connection status", "user_id", session.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ConnectionStatusResponse{Connected: connected})
}

// ListItems returns the merged, deduplicated calendar-item view for a window.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	from, to, maxResults, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.sync.FetchItems(r.Context(), session.UserID, from, to, maxResults)
	if err != nil {
		h.writeServiceError(w, err, "items fetch failed")
		return
	}

	resp := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListEvents returns only event-sourced items for a window.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	from, to, maxResults, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.sync.FetchEvents(r.Context(), session.UserID, from, to, maxResults)
	if err != nil {
		h.writeServiceError(w, err, "events fetch failed")
		return
	}

	resp := make([]ItemResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toItemResponse(event))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTasks returns raw task-list entries due in a window.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	from, to, _, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	showCompleted := r.URL.Query().Get("show_completed") != "false"

	tasks, err := h.sync.FetchTasks(r.Context(), session.UserID, from, to, showCompleted)
	if err != nil {
		h.writeServiceError(w, err, "tasks fetch failed")
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTask inserts a new task into the user's task list.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	task := model.Task{Title: req.Title, Notes: req.Notes}
	if req.Due != "" {
		due, isDate, err := parseDue(req.Due)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due: expected 2006-01-02 or RFC 3339")
			return
		}
		task.Due = due
		task.DueIsDate = isDate
	}

	created, err := h.mutations.CreateTask(r.Context(), session.UserID, req.Tasklist, task)
	if err != nil {
		h.writeServiceError(w, err, "task creation failed")
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(created))
}

// UpdateTaskStatus transitions a task between todo, in_progress, and done.
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	taskID := r.PathValue("id")

	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.ItemStatus(req.Status)
	if status != model.StatusTodo && status != model.StatusInProgress && status != model.StatusDone {
		writeError(w, http.StatusBadRequest, "invalid status: expected todo, in_progress, or done")
		return
	}
	previous := model.ItemStatus(req.PreviousStatus)

	updated, err := h.mutations.UpdateTaskStatus(r.Context(), session.UserID, req.Tasklist, taskID, status, previous)
	if err != nil {
		h.writeServiceError(w, err, "task status update failed")
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

// DeleteTask removes a task from the user's task list.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	taskID := r.PathValue("id")

	previous := model.ItemStatus(r.URL.Query().Get("previous_status"))
	tasklist := r.URL.Query().Get("tasklist")

	if err := h.mutations.DeleteTask(r.Context(), session.UserID, tasklist, taskID, previous); err != nil {
		h.writeServiceError(w, err, "task delete failed")
		return
	}

	writeJSON(w, http.StatusOK, TaskDeletedResponse{Status: "deleted"})
}

// Organize turns free-form brain-dump text into structured tasks and notes.
func (h *Handler) Organize(w http.ResponseWriter, r *http.Request) {
	var req model.OrganizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.TodayISO == "" {
		req.TodayISO = time.Now().UTC().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, req.TodayISO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid todayISO: expected 2006-01-02")
		return
	}

	resp, err := h.organizer.Organize(r.Context(), req)
	if err != nil {
		h.logger.Error("organize failed", "error", err)
		writeError(w, http.StatusBadGateway, "organization service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Transcribe converts an uploaded audio file to text.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	text, err := h.transcriber.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		h.logger.Error("transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, "transcription service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, TranscriptionResponse{Text: text})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps a classified application error to its HTTP status.
// Unclassified errors are logged and reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	kind := application.KindOf(err)
	if kind == "" {
		h.logger.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Warn(logMsg, "kind", string(kind), "error", err)
	writeJSON(w, statusFromKind(kind), errorResponse{Error: err.Error(), Kind: string(kind)})
}

// parseWindow reads the from/to/max_results query parameters. Bare dates
// expand to their full day; both parameters default to today.
func parseWindow(r *http.Request) (from, to time.Time, maxResults int64, err error) {
	now := time.Now().UTC()
	from = model.StartOfDay(now)
	to = model.EndOfDay(now)

	if v := r.URL.Query().Get("from"); v != "" {
		from, err = parseWindowBound(v, false)
		if err != nil {
			return time.Time{}, time.Time{}, 0, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = parseWindowBound(v, true)
		if err != nil {
			return time.Time{}, time.Time{}, 0, err
		}
	}
	if v := r.URL.Query().Get("max_results"); v != "" {
		maxResults, err = strconv.ParseInt(v, 10, 64)
		if err != nil || maxResults < 0 {
			return time.Time{}, time.Time{}, 0, errInvalidMaxResults
		}
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, 0, errWindowInverted
	}
	return from, to, maxResults, nil
}

// parseWindowBound accepts a bare date or a full RFC 3339 timestamp. A bare
// date used as the upper bound means the end of that day.
func parseWindowBound(v string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, errInvalidWindowBound
	}
	if upper {
		return model.EndOfDay(t), nil
	}
	return t, nil
}

// parseDue accepts a bare date or a full RFC 3339 timestamp, reporting
// which form was supplied.
func parseDue(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
