package userchallenge

import (
	"time"

	"github.com/google/uuid"

	"onePercentAPI/internal/dates"
	"onePercentAPI/internal/types/challenge"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSnoozed    Status = "snoozed"
	StatusSkipped    Status = "skipped"
)

// UserChallenge is one user's assignment. Its content comes from exactly one
// of two places: the referenced catalog Challenge, or the Custom* fields when
// IsCustom is set. Callers should not read those fields directly; View
// resolves the variant once into a single display struct.
type UserChallenge struct {
	ID                uuid.UUID            `json:"id" db:"id"`
	UserID            uuid.UUID            `json:"user_id" db:"user_id"`
	ChallengeID       *uuid.UUID           `json:"challenge_id,omitempty" db:"challenge_id"`
	IsCustom          bool                 `json:"is_custom" db:"is_custom"`
	CustomTitle       *string              `json:"-" db:"custom_title"`
	CustomDescription *string              `json:"-" db:"custom_description"`
	CustomCategory    *challenge.Category  `json:"-" db:"custom_category"`
	CustomMinutes     *int                 `json:"-" db:"custom_minutes"`
	Status            Status               `json:"status" db:"status"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty" db:"completed_at"`
	Feedback          *string              `json:"feedback,omitempty" db:"feedback"`
	Notes             *string              `json:"notes,omitempty" db:"notes"`
	ScheduledDate     *dates.Date          `json:"scheduled_date,omitempty" db:"scheduled_date"`
	CreatedAt         time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at" db:"updated_at"`

	// Catalog is the joined template row, populated when ChallengeID is set.
	Catalog *challenge.Challenge `json:"-"`
}

// View is the normalized, variant-free shape handed to the API layer.
type View struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Category         challenge.Category `json:"category"`
	EstimatedMinutes int                `json:"estimated_minutes"`
	Difficulty       int                `json:"difficulty,omitempty"`
	Benefit          *string            `json:"benefit,omitempty"`
	DayNumber        int                `json:"day_number,omitempty"`
	IsCustom         bool               `json:"is_custom"`
	Status           Status             `json:"status"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	Feedback         *string            `json:"feedback,omitempty"`
	Notes            *string            `json:"notes,omitempty"`
	ScheduledDate    *dates.Date        `json:"scheduled_date,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// View resolves the catalog/custom variant into the display shape.
func (uc *UserChallenge) View() View {
	v := View{
		ID:            uc.ID,
		IsCustom:      uc.IsCustom,
		Status:        uc.Status,
		CompletedAt:   uc.CompletedAt,
		Feedback:      uc.Feedback,
		Notes:         uc.Notes,
		ScheduledDate: uc.ScheduledDate,
		CreatedAt:     uc.CreatedAt,
	}

	if uc.IsCustom {
		if uc.CustomTitle != nil {
			v.Title = *uc.CustomTitle
		}
		if uc.CustomDescription != nil {
			v.Description = *uc.CustomDescription
		}
		if uc.CustomCategory != nil {
			v.Category = *uc.CustomCategory
		}
		if uc.CustomMinutes != nil {
			v.EstimatedMinutes = *uc.CustomMinutes
		}
		return v
	}

	if uc.Catalog != nil {
		v.Title = uc.Catalog.Title
		v.Description = uc.Catalog.Description
		v.Category = uc.Catalog.Category
		v.EstimatedMinutes = uc.Catalog.EstimatedMinutes
		v.Difficulty = uc.Catalog.Difficulty
		v.Benefit = uc.Catalog.Benefit
		v.DayNumber = uc.Catalog.DayNumber
	}
	return v
}

// CanTransition reports whether a status change is legal. completed and
// skipped are terminal; snoozed can be picked back up.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusCompleted || to == StatusSnoozed || to == StatusSkipped
	case StatusInProgress:
		return to == StatusCompleted || to == StatusSnoozed || to == StatusSkipped
	case StatusSnoozed:
		return to == StatusPending || to == StatusInProgress || to == StatusCompleted
	default:
		return false
	}
}
