// Package model holds the fields shared by persisted entities.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by every entity with a surrogate id and timestamps.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
