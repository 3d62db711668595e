package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user that can own or join organizations.
type User struct {
	UserID    uuid.UUID // UUIDv7
	Email     string    // unique
	Name      string    // display name
	CreatedAt time.Time
}
