package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member is an authenticated user of the planner. Accounts are created by
// the external identity service; this service only reads them.
type Member struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}
