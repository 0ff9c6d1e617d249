package memories

import (
	"time"

	"github.com/google/uuid"
)

// FixedUserID owns every memory created through the API until per-user auth exists.
var FixedUserID = uuid.Nil

type Memory struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     *string    `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
