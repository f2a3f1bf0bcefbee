package journal

import (
	"time"

	"github.com/google/uuid"

	"onePercentAPI/internal/dates"
)

type Entry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	EntryDate dates.Date `json:"entry_date" db:"entry_date"`
	Content   string     `json:"content" db:"content"`
	Mood      *string    `json:"mood,omitempty" db:"mood"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateEntryRequest struct {
	EntryDate string  `json:"entry_date,omitempty"`
	Content   string  `json:"content"`
	Mood      *string `json:"mood,omitempty"`
}

type UpdateEntryRequest struct {
	Content *string `json:"content,omitempty"`
	Mood    *string `json:"mood,omitempty"`
}
