package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new booking Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

const selectBooking = `
	SELECT id, field_id, user_id, start_time, end_time, type, status,
		participants_json, participant_details_json, total_price, max_participants,
		join_deadline, notes, created_at, updated_at, version
	FROM bookings`

func (s *store) Create(ctx context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	participantsJSON, err := json.Marshal(b.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}
	detailsJSON, err := json.Marshal(b.ParticipantDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal participant details: %w", err)
	}
	var joinDeadline sql.NullInt64
	if b.JoinDeadline != nil {
		joinDeadline = sql.NullInt64{Int64: b.JoinDeadline.UnixMilli(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, field_id, user_id, start_time, end_time, type, status,
			participants_json, participant_details_json, total_price, max_participants,
			join_deadline, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.FieldID, b.UserID, b.StartTime.UnixMilli(), b.EndTime.UnixMilli(),
		string(b.Type), string(b.Status), string(participantsJSON), string(detailsJSON),
		b.TotalPrice, b.MaxParticipants, joinDeadline, b.Notes,
		b.CreatedAt.UnixMilli(), b.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	log.Info("Created booking", "bookingID", b.ID, "type", b.Type, "participants", len(b.Participants))
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := scanBooking(s.db.QueryRowContext(ctx, selectBooking+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (s *store) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ?, version = version + 1 WHERE id = ? AND status = ?",
		string(to), time.Now().UnixMilli(), id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (s *store) Save(ctx context.Context, b *Booking, from Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	participantsJSON, err := json.Marshal(b.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}
	detailsJSON, err := json.Marshal(b.ParticipantDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal participant details: %w", err)
	}
	b.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET
			status = ?, participants_json = ?, participant_details_json = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND status = ?`,
		string(b.Status), string(participantsJSON), string(detailsJSON),
		b.UpdatedAt.UnixMilli(), b.ID, b.Version, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return ErrStale
	}
	b.Version++
	return nil
}

func (s *store) FindOpenShared(ctx context.Context, fieldID string, start, end time.Time) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings, err := s.query(ctx,
		selectBooking+" WHERE type = ? AND status = ? AND field_id = ? AND start_time = ? AND end_time = ? ORDER BY created_at",
		string(TypeShared), string(StatusWaiting), fieldID, start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find open shared booking: %w", err)
	}
	// Participant counts live in a JSON column.
	for _, b := range bookings {
		if len(b.Participants) < b.capacity() {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *store) ListWaiting(ctx context.Context, now time.Time) ([]*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings, err := s.query(ctx,
		selectBooking+" WHERE type = ? AND status = ? AND join_deadline IS NOT NULL AND join_deadline >= ? ORDER BY start_time",
		string(TypeShared), string(StatusWaiting), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting bookings: %w", err)
	}
	return bookings, nil
}

func (s *store) query(ctx context.Context, q string, args ...any) ([]*Booking, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *store) ListExpiredShared(ctx context.Context, now time.Time) ([]*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectBooking+" WHERE type = ? AND status = ? AND join_deadline IS NOT NULL AND join_deadline < ? ORDER BY join_deadline",
		string(TypeShared), string(StatusWaiting), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired shared bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bookings WHERE status IN (?, ?) AND updated_at < ?",
		string(StatusCancelled), string(StatusCompleted), cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished bookings: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var (
		b                                Booking
		bookingType, status              string
		participantsJSON, detailsJSON    string
		start, end, createdAt, updatedAt int64
		joinDeadline                     sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.FieldID, &b.UserID, &start, &end, &bookingType, &status,
		&participantsJSON, &detailsJSON, &b.TotalPrice, &b.MaxParticipants,
		&joinDeadline, &b.Notes, &createdAt, &updatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.Type = Type(bookingType)
	b.Status = Status(status)
	b.StartTime = time.UnixMilli(start)
	b.EndTime = time.UnixMilli(end)
	b.CreatedAt = time.UnixMilli(createdAt)
	b.UpdatedAt = time.UnixMilli(updatedAt)
	if joinDeadline.Valid {
		t := time.UnixMilli(joinDeadline.Int64)
		b.JoinDeadline = &t
	}
	if err := json.Unmarshal([]byte(participantsJSON), &b.Participants); err != nil {
		log.Warn("Failed to unmarshal booking participants", "bookingID", b.ID, "error", err)
	}
	if err := json.Unmarshal([]byte(detailsJSON), &b.ParticipantDetails); err != nil {
		log.Warn("Failed to unmarshal booking participant details", "bookingID", b.ID, "error", err)
	}
	return &b, nil
}
