package userchallenge

import (
	"testing"

	"github.com/google/uuid"

	"onePercentAPI/internal/types/challenge"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestViewResolvesCustomVariant(t *testing.T) {
	cat := challenge.CategoryFocus
	uc := &UserChallenge{
		ID:                uuid.New(),
		IsCustom:          true,
		CustomTitle:       strPtr("Inbox zero"),
		CustomDescription: strPtr("Archive everything older than a week"),
		CustomCategory:    &cat,
		CustomMinutes:     intPtr(20),
		Status:            StatusPending,
	}

	v := uc.View()
	if v.Title != "Inbox zero" || v.Description == "" {
		t.Errorf("custom content not resolved: %+v", v)
	}
	if v.Category != challenge.CategoryFocus || v.EstimatedMinutes != 20 {
		t.Errorf("custom category/minutes not resolved: %+v", v)
	}
	if !v.IsCustom {
		t.Error("IsCustom flag lost")
	}
}

func TestViewResolvesCatalogVariant(t *testing.T) {
	id := uuid.New()
	uc := &UserChallenge{
		ID:          uuid.New(),
		ChallengeID: &id,
		Status:      StatusInProgress,
		Catalog: &challenge.Challenge{
			ID:               id,
			Category:         challenge.CategoryEnergy,
			DayNumber:        4,
			Title:            "Two-minute stretch",
			Description:      "Stand up and stretch before your first meeting",
			Difficulty:       2,
			EstimatedMinutes: 2,
		},
	}

	v := uc.View()
	if v.Title != "Two-minute stretch" || v.DayNumber != 4 || v.Difficulty != 2 {
		t.Errorf("catalog content not resolved: %+v", v)
	}
	if v.Category != challenge.CategoryEnergy {
		t.Errorf("expected energy category, got %s", v.Category)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusSnoozed},
		{StatusPending, StatusSkipped},
		{StatusInProgress, StatusCompleted},
		{StatusSnoozed, StatusInProgress},
		{StatusSnoozed, StatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusCompleted},
		{StatusSkipped, StatusInProgress},
		{StatusSkipped, StatusCompleted},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}
