package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"onePercentAPI/internal/types/challenge"
	"onePercentAPI/utils"
)

type DemoService struct {
	db  *pgxpool.Pool
	mu  sync.Mutex
	rng *rand.Rand
}

func NewDemoService(db *pgxpool.Pool) *DemoService {
	return &DemoService{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type DemoChallengeResponse struct {
	Challenge   *challenge.Challenge `json:"challenge"`
	TrainerNote string               `json:"trainerNote"`
	DemoMessage string               `json:"demoMessage"`
}

// GetDemoChallenge serves the unauthenticated try-it-out flow: filter the
// catalog against the visitor's answers and hand back one random match, or
// the built-in fallback when nothing fits.
func (s *DemoService) GetDemoChallenge(ctx context.Context, req *utils.DemoRequest) (*DemoChallengeResponse, error) {
	if req.TimeMinutes < 0 || req.TimeMinutes > 1440 {
		return nil, fmt.Errorf("timeMinutes must be between 0 and 1440: %w", ErrValidation)
	}
	for _, c := range req.Categories {
		if !challenge.IsValidCategory(c) {
			return nil, fmt.Errorf("unknown category %q: %w", c, ErrValidation)
		}
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	picked, ok := utils.PickDemoChallenge(catalog, *req, s.rng)
	s.mu.Unlock()

	if !ok {
		picked = utils.FallbackDemoChallenge()
	}

	note := fmt.Sprintf("Here's a %d-minute %s challenge to get you started.", picked.EstimatedMinutes, picked.Category)
	if req.KidMode {
		note = fmt.Sprintf("Here's an easy %d-minute %s challenge, perfect to do together.", picked.EstimatedMinutes, picked.Category)
	}
	if req.Goal != "" {
		note += fmt.Sprintf(" It's a small step toward %q.", req.Goal)
	}

	return &DemoChallengeResponse{
		Challenge:   picked,
		TrainerNote: note,
		DemoMessage: "Sign up to get a new 1% improvement every day and build your streak.",
	}, nil
}

func (s *DemoService) loadCatalog(ctx context.Context) ([]*challenge.Challenge, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, category, day_number, title, description, benefit, difficulty, estimated_minutes, created_at
		FROM challenges
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	defer rows.Close()

	var catalog []*challenge.Challenge
	for rows.Next() {
		c := &challenge.Challenge{}
		err := rows.Scan(&c.ID, &c.Category, &c.DayNumber, &c.Title, &c.Description, &c.Benefit, &c.Difficulty, &c.EstimatedMinutes, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		catalog = append(catalog, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return catalog, nil
}
