package utils

import "testing"

func TestMomentumScoreGrowsWithStreak(t *testing.T) {
	low := CalculateMomentumScore(2, 10, 0)
	high := CalculateMomentumScore(10, 10, 0)
	if high <= low {
		t.Errorf("longer streak should score higher: %f vs %f", low, high)
	}
}

func TestMomentumScoreZeroBaseline(t *testing.T) {
	if got := CalculateMomentumScore(0, 0, 0); got != 0 {
		t.Errorf("expected 0 for a new user, got %f", got)
	}
}
