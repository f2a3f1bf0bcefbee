package challenge

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryEnergy        Category = "energy"
	CategoryMindset       Category = "mindset"
	CategoryFocus         Category = "focus"
	CategoryRelationships Category = "relationships"
	CategoryHome          Category = "home"
	CategoryFinance       Category = "finance"
	CategoryCreativity    Category = "creativity"
	CategoryRecovery      Category = "recovery"
)

var Categories = []Category{
	CategoryEnergy,
	CategoryMindset,
	CategoryFocus,
	CategoryRelationships,
	CategoryHome,
	CategoryFinance,
	CategoryCreativity,
	CategoryRecovery,
}

func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Challenge is an immutable catalog template, keyed by category and ordinal
// day number within that category's track. Seeded once, never user-mutated.
type Challenge struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Category         Category  `json:"category" db:"category"`
	DayNumber        int       `json:"day_number" db:"day_number"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	Benefit          *string   `json:"benefit,omitempty" db:"benefit"`
	Difficulty       int       `json:"difficulty" db:"difficulty"`
	EstimatedMinutes int       `json:"estimated_minutes" db:"estimated_minutes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
