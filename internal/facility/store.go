package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new facility Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

func (s *store) GetField(ctx context.Context, id string) (*Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f Field
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, location, sport, price_per_hour, created_at, updated_at FROM fields WHERE id = ?", id,
	).Scan(&f.ID, &f.Name, &f.Location, &f.Sport, &f.PricePerHour, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get field: %w", err)
	}
	f.CreatedAt = time.Unix(createdAt, 0)
	f.UpdatedAt = time.Unix(updatedAt, 0)
	return &f, nil
}

func (s *store) ListFields(ctx context.Context) ([]Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, location, sport, price_per_hour, created_at, updated_at FROM fields ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		var createdAt, updatedAt int64
		if err := rows.Scan(&f.ID, &f.Name, &f.Location, &f.Sport, &f.PricePerHour, &createdAt, &updatedAt); err != nil {
			log.Error("Failed to scan field row", "error", err)
			continue
		}
		f.CreatedAt = time.Unix(createdAt, 0)
		f.UpdatedAt = time.Unix(updatedAt, 0)
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (s *store) UpsertField(ctx context.Context, field Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fields (id, name, location, sport, price_per_hour, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			sport = excluded.sport,
			price_per_hour = excluded.price_per_hour,
			updated_at = excluded.updated_at`,
		field.ID, field.Name, field.Location, field.Sport, field.PricePerHour, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert field: %w", err)
	}
	log.Debug("Upserted field", "fieldID", field.ID, "name", field.Name)
	return nil
}

func (s *store) UpsertUser(ctx context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := user.Role
	if role == "" {
		role = RoleUser
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			role = excluded.role`,
		user.ID, user.Name, user.Email, user.Phone, string(role), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	log.Debug("Upserted user", "userID", user.ID)
	return nil
}

func (s *store) GetUsers(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, phone, role, created_at FROM users WHERE id IN ("+placeholders+")",
		ToAnySlice(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var role string
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &createdAt); err != nil {
			log.Error("Failed to scan user row", "error", err)
			continue
		}
		u.Role = Role(role)
		u.CreatedAt = time.Unix(createdAt, 0)
		users = append(users, u)
	}
	return users, rows.Err()
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
