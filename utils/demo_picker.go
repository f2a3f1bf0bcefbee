package utils

import (
	"math/rand"
	"strings"

	"onePercentAPI/internal/types/challenge"
)

type DemoRequest struct {
	Categories  []challenge.Category `json:"categories"`
	TimeMinutes int                  `json:"timeMinutes"`
	Constraints []string             `json:"constraints"`
	KidMode     bool                 `json:"kidMode,omitempty"`
	Goal        string               `json:"goal,omitempty"`
}

const (
	demoMaxDifficulty    = 4
	demoKidMaxDifficulty = 2
)

// Equipment/movement terms excluded per constraint tag. Unknown tags are
// matched literally against the description.
var constraintKeywords = map[string][]string{
	"no_equipment": {"dumbbell", "weights", "kettlebell", "resistance band", "barbell"},
	"no_running":   {"run", "jog", "sprint"},
	"no_outdoors":  {"outside", "outdoors", "walk around the block", "park"},
	"quiet":        {"shout", "sing", "call someone", "phone call"},
	"seated":       {"jump", "squat", "pushup", "push-up", "burpee"},
}

// PickDemoChallenge selects a catalog row for the unauthenticated demo flow:
// energy/mindset categories first, exact time match, difficulty capped (lower
// in kid mode), constraint keywords excluded, uniform random among what's
// left. Returns false when nothing in the catalog fits.
func PickDemoChallenge(catalog []*challenge.Challenge, req DemoRequest, rng *rand.Rand) (*challenge.Challenge, bool) {
	categories := req.Categories
	if len(categories) == 0 {
		categories = []challenge.Category{challenge.CategoryEnergy, challenge.CategoryMindset}
	} else {
		preferred := make([]challenge.Category, 0, len(categories))
		rest := make([]challenge.Category, 0, len(categories))
		for _, c := range categories {
			if c == challenge.CategoryEnergy || c == challenge.CategoryMindset {
				preferred = append(preferred, c)
			} else {
				rest = append(rest, c)
			}
		}
		categories = append(preferred, rest...)
	}

	maxDifficulty := demoMaxDifficulty
	if req.KidMode {
		maxDifficulty = demoKidMaxDifficulty
	}

	for _, cat := range categories {
		var matches []*challenge.Challenge
		for _, c := range catalog {
			if c.Category != cat {
				continue
			}
			if req.TimeMinutes > 0 && c.EstimatedMinutes != req.TimeMinutes {
				continue
			}
			if c.Difficulty > maxDifficulty {
				continue
			}
			if violatesConstraint(c.Description, req.Constraints) {
				continue
			}
			matches = append(matches, c)
		}
		if len(matches) > 0 {
			return matches[rng.Intn(len(matches))], true
		}
	}

	return nil, false
}

func violatesConstraint(description string, constraints []string) bool {
	desc := strings.ToLower(description)
	for _, constraint := range constraints {
		tag := strings.ToLower(strings.TrimSpace(constraint))
		if tag == "" {
			continue
		}
		keywords, known := constraintKeywords[tag]
		if !known {
			keywords = []string{tag}
		}
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				return true
			}
		}
	}
	return false
}

// FallbackDemoChallenge is returned when no catalog row survives filtering.
func FallbackDemoChallenge() *challenge.Challenge {
	benefit := "A single deep-breathing break lowers stress for hours afterwards"
	return &challenge.Challenge{
		Category:         challenge.CategoryMindset,
		DayNumber:        1,
		Title:            "One-minute breathing reset",
		Description:      "Sit still, close your eyes, and take ten slow breaths counting each exhale.",
		Benefit:          &benefit,
		Difficulty:       1,
		EstimatedMinutes: 1,
	}
}
