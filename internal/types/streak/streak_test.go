package streak

import (
	"testing"
	"time"

	"onePercentAPI/internal/dates"
)

func date(y int, m time.Month, d int) dates.Date {
	return dates.New(y, m, d)
}

func TestFirstCompletion(t *testing.T) {
	got := Advance(Streak{}, date(2024, time.January, 10))

	if got.CurrentStreak != 1 || got.LongestStreak != 1 {
		t.Errorf("expected 1/1, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}
	if got.LastCompletionDate == nil || got.LastCompletionDate.String() != "2024-01-10" {
		t.Errorf("last_completion_date not set to 2024-01-10: %v", got.LastCompletionDate)
	}
	if got.StreakStartDate == nil || got.StreakStartDate.String() != "2024-01-10" {
		t.Errorf("streak_start_date not set to 2024-01-10: %v", got.StreakStartDate)
	}
}

func TestSameDayIsIdempotent(t *testing.T) {
	day := date(2024, time.January, 10)
	first := Advance(Streak{}, day)
	second := Advance(first, day)

	if second.CurrentStreak != first.CurrentStreak {
		t.Errorf("same-day completion inflated streak: %d -> %d", first.CurrentStreak, second.CurrentStreak)
	}
	if second.LongestStreak != first.LongestStreak {
		t.Errorf("same-day completion changed longest: %d -> %d", first.LongestStreak, second.LongestStreak)
	}
}

func TestConsecutiveDayIncrements(t *testing.T) {
	last := date(2024, time.January, 10)
	s := Streak{CurrentStreak: 5, LongestStreak: 9, LastCompletionDate: &last}

	got := Advance(s, date(2024, time.January, 11))

	if got.CurrentStreak != 6 {
		t.Errorf("expected current 6, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 9 {
		t.Errorf("expected longest 9, got %d", got.LongestStreak)
	}
	if got.LastCompletionDate.String() != "2024-01-11" {
		t.Errorf("expected last 2024-01-11, got %s", got.LastCompletionDate)
	}
}

func TestGapResets(t *testing.T) {
	last := date(2024, time.January, 10)
	s := Streak{CurrentStreak: 5, LongestStreak: 9, LastCompletionDate: &last}

	got := Advance(s, date(2024, time.January, 13))

	if got.CurrentStreak != 1 {
		t.Errorf("expected reset to 1, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 9 {
		t.Errorf("longest must survive a reset, got %d", got.LongestStreak)
	}
	if got.StreakStartDate == nil || got.StreakStartDate.String() != "2024-01-13" {
		t.Errorf("streak_start_date should move to 2024-01-13, got %v", got.StreakStartDate)
	}
}

func TestCompletionBehindRecordedDateResets(t *testing.T) {
	last := date(2024, time.January, 10)
	s := Streak{CurrentStreak: 5, LongestStreak: 9, LastCompletionDate: &last}

	got := Advance(s, date(2024, time.January, 8))

	if got.CurrentStreak != 1 {
		t.Errorf("expected reset to 1, got %d", got.CurrentStreak)
	}
}

func TestLongestTracksCurrent(t *testing.T) {
	s := Streak{}
	day := date(2024, time.March, 1)
	for i := 0; i < 12; i++ {
		s = Advance(s, day.AddDays(i))
	}
	if s.CurrentStreak != 12 || s.LongestStreak != 12 {
		t.Fatalf("expected 12/12, got %d/%d", s.CurrentStreak, s.LongestStreak)
	}

	// Break it, then rebuild a shorter run: longest must not move.
	s = Advance(s, day.AddDays(20))
	s = Advance(s, day.AddDays(21))
	if s.CurrentStreak != 2 {
		t.Errorf("expected current 2, got %d", s.CurrentStreak)
	}
	if s.LongestStreak != 12 {
		t.Errorf("expected longest 12, got %d", s.LongestStreak)
	}
}

func TestLongestNonDecreasingOverRandomishSequence(t *testing.T) {
	s := Streak{}
	base := date(2024, time.May, 1)
	offsets := []int{0, 1, 2, 2, 5, 6, 7, 8, 8, 15, 16}

	prevLongest := 0
	for _, off := range offsets {
		s = Advance(s, base.AddDays(off))
		if s.LongestStreak < prevLongest {
			t.Fatalf("longest decreased: %d -> %d", prevLongest, s.LongestStreak)
		}
		if s.LongestStreak < s.CurrentStreak {
			t.Fatalf("longest %d < current %d", s.LongestStreak, s.CurrentStreak)
		}
		prevLongest = s.LongestStreak
	}
}
