package facility

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// ErrFieldNotFound is returned when no field has the requested id.
var ErrFieldNotFound = errors.New("field not found")

// Role is the platform role of a user.
type Role string

const (
	RoleUser    Role = "user"
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// IsStaff reports whether the role may organize events.
func (r Role) IsStaff() bool {
	switch r {
	case RoleStaff, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Field is a bookable playing field rented by the hour.
type Field struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Sport        string    `json:"sport"`
	PricePerHour int64     `json:"price_per_hour"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User is a platform member that can organize or join games.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// store handles all database operations for fields and users.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
