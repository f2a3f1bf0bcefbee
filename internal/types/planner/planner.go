package planner

import (
	"time"

	"github.com/google/uuid"

	"onePercentAPI/internal/dates"
)

type Todo struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Title     string      `json:"title" db:"title"`
	Done      bool        `json:"done" db:"done"`
	DueDate   *dates.Date `json:"due_date,omitempty" db:"due_date"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

type CreateTodoRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date,omitempty"`
}

// Entry is a planned block for a specific day, e.g. "morning: deep work".
type Entry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	EntryDate dates.Date `json:"entry_date" db:"entry_date"`
	TimeSlot  string     `json:"time_slot" db:"time_slot"`
	Title     string     `json:"title" db:"title"`
	Notes     *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateEntryRequest struct {
	EntryDate string  `json:"entry_date"`
	TimeSlot  string  `json:"time_slot"`
	Title     string  `json:"title"`
	Notes     *string `json:"notes,omitempty"`
}
