package invitation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewStore creates a new invitation Store.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

const selectInvitation = `
	SELECT id, kind, field_id, created_by, name, description, image,
		start_time, end_time, deadline, status, min_players, max_players, available_slots,
		player_level, play_style, team_preference, discount_percent, estimated_price,
		booking_id, representative_id, interested_players_json, created_at, updated_at, version
	FROM invitations`

func (s *store) Create(ctx context.Context, inv *Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Version == 0 {
		inv.Version = 1
	}
	playersJSON, err := json.Marshal(inv.participants())
	if err != nil {
		return fmt.Errorf("failed to marshal interested players: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invitations (
			id, kind, field_id, created_by, name, description, image,
			start_time, end_time, deadline, status, min_players, max_players, available_slots,
			player_level, play_style, team_preference, discount_percent, estimated_price,
			booking_id, representative_id, interested_players_json, created_at, updated_at, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, string(inv.Kind), inv.FieldID, inv.CreatedBy, inv.Name, inv.Description, inv.Image,
		inv.StartTime.UnixMilli(), inv.EndTime.UnixMilli(), inv.Deadline.UnixMilli(), string(inv.Status),
		inv.MinPlayers, inv.MaxPlayers, inv.AvailableSlots,
		string(inv.PlayerLevel), string(inv.PlayStyle), string(inv.TeamPreference),
		inv.DiscountPercent, inv.EstimatedPrice,
		nullString(inv.BookingID), nullString(inv.RepresentativeID), string(playersJSON),
		inv.CreatedAt.UnixMilli(), inv.UpdatedAt.UnixMilli(), inv.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	log.Info("Created invitation", "kind", inv.Kind, "id", inv.ID, "createdBy", inv.CreatedBy)
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, err := scanInvitation(s.db.QueryRowContext(ctx, selectInvitation+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("invitation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func (s *store) Save(ctx context.Context, inv *Invitation, from Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playersJSON, err := json.Marshal(inv.participants())
	if err != nil {
		return fmt.Errorf("failed to marshal interested players: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE invitations SET
			name = ?, description = ?, image = ?, start_time = ?, end_time = ?, deadline = ?,
			status = ?, min_players = ?, max_players = ?, available_slots = ?,
			player_level = ?, play_style = ?, team_preference = ?,
			booking_id = ?, representative_id = ?, interested_players_json = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND status = ?`,
		inv.Name, inv.Description, inv.Image,
		inv.StartTime.UnixMilli(), inv.EndTime.UnixMilli(), inv.Deadline.UnixMilli(),
		string(inv.Status), inv.MinPlayers, inv.MaxPlayers, inv.AvailableSlots,
		string(inv.PlayerLevel), string(inv.PlayStyle), string(inv.TeamPreference),
		nullString(inv.BookingID), nullString(inv.RepresentativeID), string(playersJSON),
		inv.UpdatedAt.UnixMilli(),
		inv.ID, inv.Version, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to save invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		log.Warn("Invitation changed since it was read", "id", inv.ID, "version", inv.Version, "expectedStatus", from)
		return ErrStale
	}
	inv.Version++
	return nil
}

func (s *store) List(ctx context.Context, q Query) ([]*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(q.Kind))
	}
	if len(q.Statuses) > 0 {
		where = append(where, "status IN ("+strings.TrimSuffix(strings.Repeat("?,", len(q.Statuses)), ",")+")")
		for _, st := range q.Statuses {
			args = append(args, string(st))
		}
	}
	if q.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, q.CreatedBy)
	}
	bound := func(column, op string, t *time.Time) {
		if t != nil {
			where = append(where, column+" "+op+" ?")
			args = append(args, t.UnixMilli())
		}
	}
	bound("start_time", ">", q.StartAfter)
	bound("start_time", "<", q.StartBefore)
	bound("deadline", ">", q.DeadlineAfter)
	bound("deadline", "<", q.DeadlineBefore)
	bound("end_time", "<", q.EndBefore)

	query := selectInvitation
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.NewestFirst {
		query += " ORDER BY start_time DESC"
	} else {
		query += " ORDER BY start_time ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			log.Error("Failed to scan invitation row", "error", err)
			continue
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (s *store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM invitations WHERE status IN (?, ?) AND updated_at < ?",
		string(StatusCancelled), string(StatusCompleted), cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished invitations: %w", err)
	}
	return res.RowsAffected()
}

// participants never encodes a nil roster as JSON null.
func (inv *Invitation) participants() []Participant {
	if inv.InterestedPlayers == nil {
		return []Participant{}
	}
	return inv.InterestedPlayers
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanInvitation(row interface{ Scan(...any) error }) (*Invitation, error) {
	var (
		inv                         Invitation
		kind, status                string
		level, style, team          string
		start, end, deadline        int64
		createdAt, updatedAt        int64
		bookingID, representativeID sql.NullString
		playersJSON                 string
	)
	err := row.Scan(
		&inv.ID, &kind, &inv.FieldID, &inv.CreatedBy, &inv.Name, &inv.Description, &inv.Image,
		&start, &end, &deadline, &status, &inv.MinPlayers, &inv.MaxPlayers, &inv.AvailableSlots,
		&level, &style, &team, &inv.DiscountPercent, &inv.EstimatedPrice,
		&bookingID, &representativeID, &playersJSON, &createdAt, &updatedAt, &inv.Version,
	)
	if err != nil {
		return nil, err
	}
	inv.Kind = Kind(kind)
	inv.Status = Status(status)
	inv.PlayerLevel = PlayerLevel(level)
	inv.PlayStyle = PlayStyle(style)
	inv.TeamPreference = TeamPreference(team)
	inv.StartTime = time.UnixMilli(start)
	inv.EndTime = time.UnixMilli(end)
	inv.Deadline = time.UnixMilli(deadline)
	inv.CreatedAt = time.UnixMilli(createdAt)
	inv.UpdatedAt = time.UnixMilli(updatedAt)
	if bookingID.Valid {
		inv.BookingID = &bookingID.String
	}
	if representativeID.Valid {
		inv.RepresentativeID = &representativeID.String
	}
	if err := json.Unmarshal([]byte(playersJSON), &inv.InterestedPlayers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interested players: %w", err)
	}
	return &inv, nil
}
