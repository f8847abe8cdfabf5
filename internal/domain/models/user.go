package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator of the admin interface.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PassHash     []byte    `db:"pass_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at,omitempty"`
}
