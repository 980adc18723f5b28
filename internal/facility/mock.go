package facility

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the Store interface for testing.
// Fields and Users back the default behaviour when no spy is set.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Fields map[string]Field
	Users  map[string]User

	GetFieldFunc func(ctx context.Context, id string) (*Field, error)
	GetUsersFunc func(ctx context.Context, ids []string) ([]User, error)

	GetUsersCalls [][]string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{
		Fields: make(map[string]Field),
		Users:  make(map[string]User),
	}
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) GetField(ctx context.Context, id string) (*Field, error) {
	if m.GetFieldFunc != nil {
		return m.GetFieldFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Fields[id]
	if !ok {
		return nil, ErrFieldNotFound
	}
	return &f, nil
}

func (m *MockStore) ListFields(ctx context.Context) ([]Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields := make([]Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		fields = append(fields, f)
	}
	return fields, nil
}

func (m *MockStore) UpsertField(ctx context.Context, field Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fields[field.ID] = field
	return nil
}

func (m *MockStore) UpsertUser(ctx context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.ID] = user
	return nil
}

func (m *MockStore) GetUsers(ctx context.Context, ids []string) ([]User, error) {
	m.mu.Lock()
	m.GetUsersCalls = append(m.GetUsersCalls, ids)
	m.mu.Unlock()
	if m.GetUsersFunc != nil {
		return m.GetUsersFunc(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []User
	for _, id := range ids {
		if u, ok := m.Users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}
