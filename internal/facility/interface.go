package facility

import "context"

// Store defines the interface for the field catalogue and its users.
type Store interface {
	GetField(ctx context.Context, id string) (*Field, error)
	ListFields(ctx context.Context) ([]Field, error)
	UpsertField(ctx context.Context, field Field) error
	UpsertUser(ctx context.Context, user User) error
	// GetUsers returns the users with the given ids. Unknown ids are skipped.
	GetUsers(ctx context.Context, ids []string) ([]User, error)
}
