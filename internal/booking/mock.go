package booking

import (
	"context"
	"sync"
	"time"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	CreateFunc               func(ctx context.Context, b *Booking) error
	GetFunc                  func(ctx context.Context, id string) (*Booking, error)
	UpdateStatusFunc         func(ctx context.Context, id string, from, to Status) (bool, error)
	SaveFunc                 func(ctx context.Context, b *Booking, from Status) error
	FindOpenSharedFunc       func(ctx context.Context, fieldID string, start, end time.Time) (*Booking, error)
	ListWaitingFunc          func(ctx context.Context, now time.Time) ([]*Booking, error)
	ListExpiredSharedFunc    func(ctx context.Context, now time.Time) ([]*Booking, error)
	DeleteFinishedBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	CreateCalls       []*Booking
	SaveCalls         []SaveCall
	UpdateStatusCalls []struct {
		ID       string
		From, To Status
	}
	DeleteFinishedBeforeCalls []time.Time
}

// SaveCall records one Save with the state the booking was saved in.
type SaveCall struct {
	Booking Booking
	From    Status
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

var _ Store = (*MockStore)(nil)

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = nil
	m.SaveCalls = nil
	m.UpdateStatusCalls = nil
	m.DeleteFinishedBeforeCalls = nil
}

func (m *MockStore) Create(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, b)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, b)
	}
	if b.ID == "" {
		b.ID = "booking-mock"
	}
	return nil
}

func (m *MockStore) Get(ctx context.Context, id string) (*Booking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	m.mu.Lock()
	m.UpdateStatusCalls = append(m.UpdateStatusCalls, struct {
		ID       string
		From, To Status
	}{id, from, to})
	m.mu.Unlock()
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *MockStore) Save(ctx context.Context, b *Booking, from Status) error {
	m.mu.Lock()
	m.SaveCalls = append(m.SaveCalls, SaveCall{Booking: *b, From: from})
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, b, from)
	}
	b.Version++
	return nil
}

func (m *MockStore) FindOpenShared(ctx context.Context, fieldID string, start, end time.Time) (*Booking, error) {
	if m.FindOpenSharedFunc != nil {
		return m.FindOpenSharedFunc(ctx, fieldID, start, end)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListWaiting(ctx context.Context, now time.Time) ([]*Booking, error) {
	if m.ListWaitingFunc != nil {
		return m.ListWaitingFunc(ctx, now)
	}
	return nil, nil
}

func (m *MockStore) ListExpiredShared(ctx context.Context, now time.Time) ([]*Booking, error) {
	if m.ListExpiredSharedFunc != nil {
		return m.ListExpiredSharedFunc(ctx, now)
	}
	return nil, nil
}

func (m *MockStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	m.DeleteFinishedBeforeCalls = append(m.DeleteFinishedBeforeCalls, cutoff)
	m.mu.Unlock()
	if m.DeleteFinishedBeforeFunc != nil {
		return m.DeleteFinishedBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}
