package streak

import (
	"time"

	"github.com/google/uuid"

	"onePercentAPI/internal/dates"
)

type Streak struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	UserID             uuid.UUID   `json:"user_id" db:"user_id"`
	CurrentStreak      int         `json:"current_streak" db:"current_streak"`
	LongestStreak      int         `json:"longest_streak" db:"longest_streak"`
	LastCompletionDate *dates.Date `json:"last_completion_date" db:"last_completion_date"`
	StreakStartDate    *dates.Date `json:"streak_start_date" db:"streak_start_date"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// Advance applies one completion on the given calendar day and returns the
// updated counters. The rules, in order:
//
//  1. Completing twice on the same day changes nothing.
//  2. Completing the day after the last completion extends the streak.
//  3. Anything else (first completion, a gap, or a recorded date that is
//     somehow ahead of the completion day) starts a fresh streak of 1.
//
// longest_streak never decreases and is always >= current_streak.
func Advance(s Streak, day dates.Date) Streak {
	if s.LastCompletionDate != nil && s.LastCompletionDate.Equal(day) {
		return s
	}

	if s.LastCompletionDate != nil && s.LastCompletionDate.Next().Equal(day) {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
		start := day
		s.StreakStartDate = &start
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}

	last := day
	s.LastCompletionDate = &last
	return s
}
