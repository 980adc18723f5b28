package invitation

import (
	"context"
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
)

// Store persists invitations of both kinds.
type Store interface {
	Create(ctx context.Context, inv *Invitation) error
	Get(ctx context.Context, id string) (*Invitation, error)
	// Save writes inv back if nobody changed it since it was read, that is
	// its version is unchanged and its status is still from. A lost race
	// returns ErrStale. On success inv.Version is bumped.
	Save(ctx context.Context, inv *Invitation, from Status) error
	List(ctx context.Context, q Query) ([]*Invitation, error)
	// DeleteFinishedBefore removes cancelled and completed invitations last
	// updated before the cutoff.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Query selects invitations. Zero fields do not filter; time bounds are
// exclusive.
type Query struct {
	Kind           Kind
	Statuses       []Status
	CreatedBy      string
	StartAfter     *time.Time
	StartBefore    *time.Time
	DeadlineAfter  *time.Time
	DeadlineBefore *time.Time
	EndBefore      *time.Time
	NewestFirst    bool
}

// FieldLookup finds the field an invitation is played on.
type FieldLookup interface {
	GetField(ctx context.Context, id string) (*facility.Field, error)
}

// BookingWriter persists the bookings produced by conversion.
type BookingWriter interface {
	Create(ctx context.Context, b *booking.Booking) error
	UpdateStatus(ctx context.Context, id string, from, to booking.Status) (bool, error)
}
