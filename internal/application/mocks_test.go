package application

import (
	"context"
	"time"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// --- Mock stores ---

type mockCredentialStore struct {
	creds   map[string]*model.Credential
	upserts []model.TokenUpdate
	err     error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{creds: make(map[string]*model.Credential)}
}

func (m *mockCredentialStore) Get(_ context.Context, userID string) (*model.Credential, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.creds[userID], nil
}

func (m *mockCredentialStore) Upsert(_ context.Context, userID string, update model.TokenUpdate) (model.Credential, error) {
	if m.err != nil {
		return model.Credential{}, m.err
	}
	m.upserts = append(m.upserts, update)

	merged := model.Credential{UserID: userID}
	if prev := m.creds[userID]; prev != nil {
		merged = *prev
	}
	if update.AccessToken != "" {
		merged.AccessToken = update.AccessToken
	}
	if update.RefreshToken != "" {
		merged.RefreshToken = update.RefreshToken
	}
	if merged.AccessToken == "" {
		return model.Credential{}, driven.ErrUnusableCredential
	}
	m.creds[userID] = &merged
	return merged, nil
}

type mockUserStore struct {
	byEmail map[string]*model.User
	created []model.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: make(map[string]*model.User)}
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.byEmail[email], nil
}

func (m *mockUserStore) Create(_ context.Context, email, name string) (model.User, error) {
	user := model.User{ID: "user-" + email, Email: email, Name: name, CreatedAt: time.Now()}
	m.byEmail[email] = &user
	m.created = append(m.created, user)
	return user, nil
}

// --- Mock provider clients ---

type mockCalendarClient struct {
	items []model.CalendarItem
	err   error
}

func (m *mockCalendarClient) ListEvents(_ context.Context, _, _ time.Time, _ int64) ([]model.CalendarItem, error) {
	return m.items, m.err
}

type mockTaskClient struct {
	tasks []model.Task
	task  model.Task

	listErr   error
	getErr    error
	createErr error
	patchErr  error
	deleteErr error

	patched []struct {
		ID        string
		Completed bool
	}
	deleted []string
}

func (m *mockTaskClient) ListTasks(_ context.Context, _ string, _, _ time.Time, _ bool) ([]model.Task, error) {
	return m.tasks, m.listErr
}

func (m *mockTaskClient) GetTask(_ context.Context, _, _ string) (model.Task, error) {
	return m.task, m.getErr
}

func (m *mockTaskClient) CreateTask(_ context.Context, _ string, task model.Task) (model.Task, error) {
	if m.createErr != nil {
		return model.Task{}, m.createErr
	}
	task.ID = "created"
	return task, nil
}

func (m *mockTaskClient) SetTaskCompleted(_ context.Context, _, id string, completed bool) (model.Task, error) {
	if m.patchErr != nil {
		return model.Task{}, m.patchErr
	}
	m.patched = append(m.patched, struct {
		ID        string
		Completed bool
	}{id, completed})
	return m.task, nil
}

func (m *mockTaskClient) DeleteTask(_ context.Context, _, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockClientFactory struct {
	calendar  driven.CalendarClient
	tasks     driven.TaskClient
	connected bool
	err       error
}

func (m *mockClientFactory) CalendarClient(_ context.Context, _ string) (driven.CalendarClient, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.connected {
		return nil, nil
	}
	return m.calendar, nil
}

func (m *mockClientFactory) TaskClient(_ context.Context, _ string) (driven.TaskClient, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.connected {
		return nil, nil
	}
	return m.tasks, nil
}

// --- Mock auth provider ---

type mockAuthProvider struct {
	tokens      model.TokenUpdate
	rawIDToken  string
	identity    driven.Identity
	exchangeErr error
	resolveErr  error
}

func (m *mockAuthProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (m *mockAuthProvider) Exchange(_ context.Context, _ string) (model.TokenUpdate, string, error) {
	return m.tokens, m.rawIDToken, m.exchangeErr
}

func (m *mockAuthProvider) ResolveIdentity(_ context.Context, _ model.TokenUpdate, _ string) (driven.Identity, error) {
	return m.identity, m.resolveErr
}
