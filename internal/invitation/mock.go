package invitation

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store for testing. It keeps copies of the saved
// records and honours the conditional save. Spies override the default
// behaviour when set. It is safe for concurrent use.
type MockStore struct {
	mu      sync.Mutex
	records map[string]Invitation

	SaveFunc                 func(ctx context.Context, inv *Invitation, from Status) error
	ListFunc                 func(ctx context.Context, q Query) ([]*Invitation, error)
	DeleteFinishedBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	SaveCalls []struct {
		ID       string
		From, To Status
	}
	DeleteFinishedBeforeCalls []time.Time
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{records: make(map[string]Invitation)}
}

var _ Store = (*MockStore)(nil)

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = nil
	m.DeleteFinishedBeforeCalls = nil
}

// Put stores a copy of inv as is.
func (m *MockStore) Put(inv *Invitation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[inv.ID] = clone(inv)
}

func clone(inv *Invitation) Invitation {
	c := *inv
	c.InterestedPlayers = slices.Clone(inv.InterestedPlayers)
	return c
}

func (m *MockStore) Create(ctx context.Context, inv *Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Version == 0 {
		inv.Version = 1
	}
	m.records[inv.ID] = clone(inv)
	return nil
}

func (m *MockStore) Get(ctx context.Context, id string) (*Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, NotFound("invitation not found")
	}
	c := clone(&rec)
	return &c, nil
}

func (m *MockStore) Save(ctx context.Context, inv *Invitation, from Status) error {
	m.mu.Lock()
	m.SaveCalls = append(m.SaveCalls, struct {
		ID       string
		From, To Status
	}{inv.ID, from, inv.Status})
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, inv, from)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[inv.ID]
	if !ok || rec.Version != inv.Version || rec.Status != from {
		return ErrStale
	}
	inv.Version++
	m.records[inv.ID] = clone(inv)
	return nil
}

func (m *MockStore) List(ctx context.Context, q Query) ([]*Invitation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	after := func(t time.Time, bound *time.Time) bool { return bound == nil || t.After(*bound) }
	before := func(t time.Time, bound *time.Time) bool { return bound == nil || t.Before(*bound) }

	var found []*Invitation
	for _, rec := range m.records {
		if q.Kind != "" && rec.Kind != q.Kind {
			continue
		}
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, rec.Status) {
			continue
		}
		if q.CreatedBy != "" && rec.CreatedBy != q.CreatedBy {
			continue
		}
		if !after(rec.StartTime, q.StartAfter) || !before(rec.StartTime, q.StartBefore) ||
			!after(rec.Deadline, q.DeadlineAfter) || !before(rec.Deadline, q.DeadlineBefore) ||
			!before(rec.EndTime, q.EndBefore) {
			continue
		}
		c := clone(&rec)
		found = append(found, &c)
	}
	slices.SortFunc(found, func(a, b *Invitation) int {
		if q.NewestFirst {
			return b.StartTime.Compare(a.StartTime)
		}
		return a.StartTime.Compare(b.StartTime)
	})
	return found, nil
}

func (m *MockStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	m.DeleteFinishedBeforeCalls = append(m.DeleteFinishedBeforeCalls, cutoff)
	m.mu.Unlock()
	if m.DeleteFinishedBeforeFunc != nil {
		return m.DeleteFinishedBeforeFunc(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, rec := range m.records {
		if (rec.Status == StatusCancelled || rec.Status == StatusCompleted) && rec.UpdatedAt.Before(cutoff) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}
