package trainer

import (
	"testing"

	"onePercentAPI/internal/types/challenge"
)

func TestAdjustDifficulty(t *testing.T) {
	cases := []struct {
		pref     int
		feedback string
		want     int
	}{
		{3, FeedbackTooHard, 2},
		{3, FeedbackTooEasy, 4},
		{3, FeedbackJustRight, 3},
		{5, FeedbackTooEasy, 5},
		{1, FeedbackTooHard, 1},
		{4, "something_else", 4},
	}

	for _, tc := range cases {
		if got := AdjustDifficulty(tc.pref, tc.feedback); got != tc.want {
			t.Errorf("AdjustDifficulty(%d, %q) = %d, want %d", tc.pref, tc.feedback, got, tc.want)
		}
	}
}

func TestParseChallengeDraftStrictJSON(t *testing.T) {
	reply := `{"title":"Cold shower finish","description":"End your shower with 30 seconds cold","category":"energy","estimated_minutes":5,"difficulty":3}`

	draft, ok := ParseChallengeDraft(reply)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if draft.Title != "Cold shower finish" || draft.Category != challenge.CategoryEnergy {
		t.Errorf("unexpected draft: %+v", draft)
	}
}

func TestParseChallengeDraftFencedJSON(t *testing.T) {
	reply := "Here you go!\n```json\n{\"title\":\"Gratitude note\",\"description\":\"Write one thing you're grateful for\",\"category\":\"mindset\",\"estimated_minutes\":3,\"difficulty\":1}\n```"

	draft, ok := ParseChallengeDraft(reply)
	if !ok {
		t.Fatal("expected fenced JSON to parse")
	}
	if draft.Title != "Gratitude note" {
		t.Errorf("unexpected title: %q", draft.Title)
	}
}

func TestParseChallengeDraftFallsBackOnChatter(t *testing.T) {
	for _, reply := range []string{
		"Sure! What kind of challenge would you like?",
		`{"title":"","description":""}`,
		"{broken json",
	} {
		if _, ok := ParseChallengeDraft(reply); ok {
			t.Errorf("expected conversational fallback for %q", reply)
		}
	}
}

func TestParseChallengeDraftNormalizesBadFields(t *testing.T) {
	reply := `{"title":"Tidy desk","description":"Clear your desk","category":"productivity","estimated_minutes":0,"difficulty":3}`

	draft, ok := ParseChallengeDraft(reply)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if draft.Category != challenge.CategoryMindset {
		t.Errorf("unknown category should default to mindset, got %s", draft.Category)
	}
	if draft.EstimatedMinutes != 10 {
		t.Errorf("out-of-range minutes should default to 10, got %d", draft.EstimatedMinutes)
	}
}

func TestPreferredCategory(t *testing.T) {
	s := &Settings{FocusAreas: []challenge.Category{challenge.CategoryFinance, challenge.CategoryHome}}
	if got := s.PreferredCategory(); got != challenge.CategoryFinance {
		t.Errorf("expected finance, got %s", got)
	}

	empty := &Settings{}
	if got := empty.PreferredCategory(); got != challenge.CategoryMindset {
		t.Errorf("expected mindset default, got %s", got)
	}

	var nilSettings *Settings
	if got := nilSettings.PreferredCategory(); got != challenge.CategoryMindset {
		t.Errorf("expected mindset for nil settings, got %s", got)
	}
}
