package utils

import "math"

// CalculateMomentumScore summarizes how much of a roll a user is on. Streak
// length dominates quadratically so a long run outweighs sheer volume.
func CalculateMomentumScore(currentStreak, totalCompleted, journalEntries int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	completedScore := float64(totalCompleted) * 0.05
	journalScore := float64(journalEntries) * 0.5

	return streakScore + completedScore + journalScore
}
