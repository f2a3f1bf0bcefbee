package utils

import (
	"math/rand"
	"testing"

	"onePercentAPI/internal/types/challenge"
)

func demoCatalog() []*challenge.Challenge {
	return []*challenge.Challenge{
		{Category: challenge.CategoryEnergy, DayNumber: 1, Title: "Stretch", Description: "Stand and stretch for five minutes", Difficulty: 1, EstimatedMinutes: 5},
		{Category: challenge.CategoryEnergy, DayNumber: 2, Title: "Sprint intervals", Description: "Run three short sprints outside", Difficulty: 4, EstimatedMinutes: 5},
		{Category: challenge.CategoryMindset, DayNumber: 1, Title: "Gratitude", Description: "Write down three things you're grateful for", Difficulty: 1, EstimatedMinutes: 5},
		{Category: challenge.CategoryFinance, DayNumber: 1, Title: "Expense check", Description: "Review yesterday's spending", Difficulty: 2, EstimatedMinutes: 5},
		{Category: challenge.CategoryEnergy, DayNumber: 3, Title: "Long walk", Description: "Take a 30 minute walk", Difficulty: 2, EstimatedMinutes: 30},
	}
}

func rng() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestPickPrefersEnergyAndMindset(t *testing.T) {
	req := DemoRequest{
		Categories:  []challenge.Category{challenge.CategoryFinance, challenge.CategoryEnergy},
		TimeMinutes: 5,
	}

	picked, ok := PickDemoChallenge(demoCatalog(), req, rng())
	if !ok {
		t.Fatal("expected a match")
	}
	if picked.Category != challenge.CategoryEnergy {
		t.Errorf("energy should be tried before finance, got %s", picked.Category)
	}
}

func TestPickFiltersByExactMinutes(t *testing.T) {
	req := DemoRequest{
		Categories:  []challenge.Category{challenge.CategoryEnergy},
		TimeMinutes: 30,
	}

	picked, ok := PickDemoChallenge(demoCatalog(), req, rng())
	if !ok {
		t.Fatal("expected a match")
	}
	if picked.Title != "Long walk" {
		t.Errorf("expected the 30-minute challenge, got %q", picked.Title)
	}
}

func TestKidModeLowersDifficultyCeiling(t *testing.T) {
	req := DemoRequest{
		Categories:  []challenge.Category{challenge.CategoryEnergy},
		TimeMinutes: 5,
		KidMode:     true,
	}

	for i := 0; i < 20; i++ {
		picked, ok := PickDemoChallenge(demoCatalog(), req, rand.New(rand.NewSource(int64(i))))
		if !ok {
			t.Fatal("expected a match")
		}
		if picked.Difficulty > demoKidMaxDifficulty {
			t.Fatalf("kid mode returned difficulty %d challenge %q", picked.Difficulty, picked.Title)
		}
	}
}

func TestConstraintExcludesByKeyword(t *testing.T) {
	req := DemoRequest{
		Categories:  []challenge.Category{challenge.CategoryEnergy},
		TimeMinutes: 5,
		Constraints: []string{"no_running"},
	}

	for i := 0; i < 20; i++ {
		picked, ok := PickDemoChallenge(demoCatalog(), req, rand.New(rand.NewSource(int64(i))))
		if !ok {
			t.Fatal("expected a match")
		}
		if picked.Title == "Sprint intervals" {
			t.Fatal("no_running constraint should exclude the sprint challenge")
		}
	}
}

func TestUnknownConstraintMatchedLiterally(t *testing.T) {
	if !violatesConstraint("Take a 30 minute walk", []string{"walk"}) {
		t.Error("literal constraint keyword should match")
	}
	if violatesConstraint("Write down three things", []string{"walk"}) {
		t.Error("constraint should not match unrelated description")
	}
}

func TestNoMatchReturnsFalse(t *testing.T) {
	req := DemoRequest{
		Categories:  []challenge.Category{challenge.CategoryRecovery},
		TimeMinutes: 45,
	}

	if _, ok := PickDemoChallenge(demoCatalog(), req, rng()); ok {
		t.Error("expected no match for an empty category/time combination")
	}

	fallback := FallbackDemoChallenge()
	if fallback == nil || fallback.Title == "" {
		t.Error("fallback challenge must always be available")
	}
}
