package booking

import (
	"context"
	"time"
)

// Store persists bookings.
type Store interface {
	// Create inserts a booking, assigning an id when it has none.
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	// UpdateStatus moves a booking from one status to another. It reports
	// false when the booking was no longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// Save writes the roster, payments and status of b back if its version
	// is unchanged and its status is still from. A lost race returns
	// ErrStale. On success b.Version is bumped.
	Save(ctx context.Context, b *Booking, from Status) error
	// FindOpenShared returns the oldest shared booking still waiting for
	// players on the same field and time window, or ErrNotFound.
	FindOpenShared(ctx context.Context, fieldID string, start, end time.Time) (*Booking, error)
	// ListWaiting returns shared bookings still taking players at now,
	// soonest first.
	ListWaiting(ctx context.Context, now time.Time) ([]*Booking, error)
	// ListExpiredShared returns shared bookings still waiting for players
	// whose join deadline is before now.
	ListExpiredShared(ctx context.Context, now time.Time) ([]*Booking, error)
	// DeleteFinishedBefore removes cancelled and completed bookings last
	// updated before the cutoff.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
