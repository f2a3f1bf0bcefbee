package userchallenge

import (
	"onePercentAPI/internal/types/challenge"
	"onePercentAPI/internal/types/streak"
)

type CreateCustomChallengeRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    challenge.Category `json:"category"`
	Minutes     int                `json:"minutes"`
}

type CompleteChallengeRequest struct {
	Feedback *string `json:"feedback,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// TodayChallengeResponse is the "what should I do today" answer. Available is
// false only when the catalog has nothing for the user's category at all.
type TodayChallengeResponse struct {
	Available bool  `json:"available"`
	DayNumber int   `json:"day_number"`
	Challenge *View `json:"challenge,omitempty"`
}

// CompleteChallengeResult reports the completion plus the streak state after
// it. StreakSynced=false means the completion landed but the streak update
// failed; callers surface that as a soft warning, never as a failure.
type CompleteChallengeResult struct {
	Challenge    View           `json:"challenge"`
	Streak       *streak.Streak `json:"streak,omitempty"`
	DayNumber    int            `json:"day_number"`
	StreakSynced bool           `json:"streak_synced"`
}
