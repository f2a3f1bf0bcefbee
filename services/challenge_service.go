package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"onePercentAPI/internal/dates"
	"onePercentAPI/internal/types/challenge"
	"onePercentAPI/internal/types/trainer"
	"onePercentAPI/internal/types/userchallenge"
)

const uniqueViolation = "23505"

type ChallengeService struct {
	db            *pgxpool.Pool
	streakService *StreakService
}

func NewChallengeService(db *pgxpool.Pool, streakService *StreakService) *ChallengeService {
	return &ChallengeService{
		db:            db,
		streakService: streakService,
	}
}

// GetCurrentDayNumber derives the user's position in their journey from the
// completed count. Never stored; the completed rows are the source of truth.
func (s *ChallengeService) GetCurrentDayNumber(ctx context.Context, clerkID string) (int, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return 0, err
	}
	return s.dayNumberFor(ctx, userID)
}

func (s *ChallengeService) dayNumberFor(ctx context.Context, userID uuid.UUID) (int, error) {
	var completed int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_challenges
		WHERE user_id = $1 AND status = 'completed'
	`, userID).Scan(&completed)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed challenges: %w", err)
	}
	return completed + 1, nil
}

// GetTodayChallenge resolves today's assignment:
//
//  1. An existing pending challenge scheduled for (or created) today, newest
//     first.
//  2. Otherwise the catalog entry for the preferred category at the current
//     day number, assigned fresh.
//  3. Otherwise the catalog wraps around to day 1.
//  4. An empty catalog yields an explicit empty response.
//
// A concurrent call racing the auto-assignment trips the daily-slot unique
// index; the loser fetches the winner's row instead of erroring.
func (s *ChallengeService) GetTodayChallenge(ctx context.Context, clerkID string, today dates.Date) (*userchallenge.TodayChallengeResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	dayNumber, err := s.dayNumberFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.pendingForDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		view := existing.View()
		return &userchallenge.TodayChallengeResponse{Available: true, DayNumber: dayNumber, Challenge: &view}, nil
	}

	category, err := s.preferredCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalogEntry, err := s.catalogAt(ctx, category, dayNumber)
	if err != nil {
		return nil, err
	}
	if catalogEntry == nil && dayNumber != 1 {
		// Catalog exhausted for this track; wrap around to day 1.
		catalogEntry, err = s.catalogAt(ctx, category, 1)
		if err != nil {
			return nil, err
		}
	}
	if catalogEntry == nil {
		return &userchallenge.TodayChallengeResponse{Available: false, DayNumber: dayNumber}, nil
	}

	assigned, err := s.assign(ctx, userID, catalogEntry, today)
	if err != nil {
		return nil, err
	}

	view := assigned.View()
	return &userchallenge.TodayChallengeResponse{Available: true, DayNumber: dayNumber, Challenge: &view}, nil
}

func (s *ChallengeService) assign(ctx context.Context, userID uuid.UUID, entry *challenge.Challenge, today dates.Date) (*userchallenge.UserChallenge, error) {
	uc := &userchallenge.UserChallenge{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: &entry.ID,
		Status:      userchallenge.StatusPending,
		Catalog:     entry,
	}
	scheduled := today
	uc.ScheduledDate = &scheduled

	query := `
		INSERT INTO user_challenges (id, user_id, challenge_id, is_custom, status, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, 'pending', $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, uc.ID, userID, entry.ID, today.Time()).Scan(&uc.CreatedAt, &uc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Lost the race: another request already assigned today's slot.
			winner, ferr := s.pendingForDay(ctx, userID, today)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to assign challenge: %w", err)
	}

	return uc, nil
}

func (s *ChallengeService) pendingForDay(ctx context.Context, userID uuid.UUID, day dates.Date) (*userchallenge.UserChallenge, error) {
	query := userChallengeSelect + `
		WHERE uc.user_id = $1
		  AND uc.status = 'pending'
		  AND (uc.scheduled_date = $2 OR uc.created_at::date = $2)
		ORDER BY uc.created_at DESC
		LIMIT 1
	`

	uc, err := s.scanUserChallenge(s.db.QueryRow(ctx, query, userID, day.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending challenge: %w", err)
	}
	return uc, nil
}

func (s *ChallengeService) catalogAt(ctx context.Context, category challenge.Category, dayNumber int) (*challenge.Challenge, error) {
	entry := &challenge.Challenge{}
	err := s.db.QueryRow(ctx, `
		SELECT id, category, day_number, title, description, benefit, difficulty, estimated_minutes, created_at
		FROM challenges
		WHERE category = $1 AND day_number = $2
	`, category, dayNumber).Scan(
		&entry.ID,
		&entry.Category,
		&entry.DayNumber,
		&entry.Title,
		&entry.Description,
		&entry.Benefit,
		&entry.Difficulty,
		&entry.EstimatedMinutes,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up catalog challenge: %w", err)
	}
	return entry, nil
}

func (s *ChallengeService) preferredCategory(ctx context.Context, userID uuid.UUID) (challenge.Category, error) {
	var focusAreas []string
	err := s.db.QueryRow(ctx, `
		SELECT focus_areas FROM trainer_settings WHERE user_id = $1
	`, userID).Scan(&focusAreas)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return challenge.CategoryMindset, nil
		}
		return "", fmt.Errorf("failed to read trainer settings: %w", err)
	}
	if len(focusAreas) == 0 {
		return challenge.CategoryMindset, nil
	}
	return challenge.Category(focusAreas[0]), nil
}

// CompleteChallenge marks an assignment done and drives the downstream
// effects: streak update (soft-fail) and difficulty adaptation (soft-fail).
// Completing an already-completed challenge is rejected rather than silently
// re-counted.
func (s *ChallengeService) CompleteChallenge(ctx context.Context, clerkID string, userChallengeID uuid.UUID, req *userchallenge.CompleteChallengeRequest, today dates.Date) (*userchallenge.CompleteChallengeResult, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnershipAndState(ctx, userChallengeID, userID, userchallenge.StatusPending, userchallenge.StatusInProgress); err != nil {
		return nil, err
	}

	query := userChallengeUpdate(`
		SET status = 'completed', completed_at = NOW(), feedback = $3, notes = $4, updated_at = NOW()
		WHERE uc.id = $1 AND uc.user_id = $2 AND uc.status IN ('pending', 'in_progress')
	`)

	uc, err := s.scanUserChallenge(s.db.QueryRow(ctx, query, userChallengeID, userID, req.Feedback, req.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// State changed between check and update; re-map the cause.
			if cerr := s.checkOwnershipAndState(ctx, userChallengeID, userID, userchallenge.StatusPending, userchallenge.StatusInProgress); cerr != nil {
				return nil, cerr
			}
			return nil, fmt.Errorf("failed to complete challenge: %w", err)
		}
		return nil, fmt.Errorf("failed to complete challenge: %w", err)
	}

	result := &userchallenge.CompleteChallengeResult{
		Challenge:    uc.View(),
		StreakSynced: true,
	}

	updatedStreak, err := s.streakService.RecordCompletion(ctx, clerkID, today)
	if err != nil {
		// The completion already landed; the streak row is the only casualty.
		log.Printf("CompleteChallenge: streak update failed for user %s: %v", clerkID, err)
		result.StreakSynced = false
	} else {
		result.Streak = updatedStreak
	}

	if req.Feedback != nil {
		s.adaptDifficulty(ctx, userID, *req.Feedback)
	}

	dayNumber, err := s.dayNumberFor(ctx, userID)
	if err != nil {
		log.Printf("CompleteChallenge: day number query failed for user %s: %v", clerkID, err)
		dayNumber = 0
	}
	result.DayNumber = dayNumber

	return result, nil
}

// adaptDifficulty nudges trainer settings based on completion feedback.
// Best-effort: failures are logged, never surfaced.
func (s *ChallengeService) adaptDifficulty(ctx context.Context, userID uuid.UUID, feedback string) {
	if feedback != trainer.FeedbackTooEasy && feedback != trainer.FeedbackTooHard {
		return
	}

	var pref int
	err := s.db.QueryRow(ctx, `
		SELECT difficulty_preference FROM trainer_settings WHERE user_id = $1
	`, userID).Scan(&pref)
	if err != nil {
		log.Printf("adaptDifficulty: failed to read settings for user %s: %v", userID, err)
		return
	}

	adjusted := trainer.AdjustDifficulty(pref, feedback)
	if adjusted == pref {
		return
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trainer_settings SET difficulty_preference = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, adjusted)
	if err != nil {
		log.Printf("adaptDifficulty: failed to update settings for user %s: %v", userID, err)
	}
}

func (s *ChallengeService) StartChallenge(ctx context.Context, clerkID string, userChallengeID uuid.UUID) (*userchallenge.View, error) {
	return s.transition(ctx, clerkID, userChallengeID, userchallenge.StatusInProgress,
		userchallenge.StatusPending, userchallenge.StatusSnoozed)
}

// SnoozeChallenge parks the assignment. No streak effect, no day-number
// effect.
func (s *ChallengeService) SnoozeChallenge(ctx context.Context, clerkID string, userChallengeID uuid.UUID) (*userchallenge.View, error) {
	return s.transition(ctx, clerkID, userChallengeID, userchallenge.StatusSnoozed,
		userchallenge.StatusPending, userchallenge.StatusInProgress)
}

func (s *ChallengeService) SkipChallenge(ctx context.Context, clerkID string, userChallengeID uuid.UUID) (*userchallenge.View, error) {
	return s.transition(ctx, clerkID, userChallengeID, userchallenge.StatusSkipped,
		userchallenge.StatusPending, userchallenge.StatusInProgress)
}

func (s *ChallengeService) transition(ctx context.Context, clerkID string, userChallengeID uuid.UUID, to userchallenge.Status, allowedFrom ...userchallenge.Status) (*userchallenge.View, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnershipAndState(ctx, userChallengeID, userID, allowedFrom...); err != nil {
		return nil, err
	}

	from := make([]string, len(allowedFrom))
	for i, st := range allowedFrom {
		from[i] = string(st)
	}

	query := userChallengeUpdate(`
		SET status = $3, updated_at = NOW()
		WHERE uc.id = $1 AND uc.user_id = $2 AND uc.status = ANY($4)
	`)

	uc, err := s.scanUserChallenge(s.db.QueryRow(ctx, query, userChallengeID, userID, to, from))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if cerr := s.checkOwnershipAndState(ctx, userChallengeID, userID, allowedFrom...); cerr != nil {
				return nil, cerr
			}
			return nil, fmt.Errorf("failed to update challenge status: %w", err)
		}
		return nil, fmt.Errorf("failed to update challenge status: %w", err)
	}

	view := uc.View()
	return &view, nil
}

// DeleteUserChallenge removes the record entirely. Only non-terminal
// assignments can be deleted.
func (s *ChallengeService) DeleteUserChallenge(ctx context.Context, clerkID string, userChallengeID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM user_challenges
		WHERE id = $1 AND user_id = $2 AND status NOT IN ('completed', 'skipped')
	`, userChallengeID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}

	if result.RowsAffected() == 0 {
		return s.checkOwnershipAndState(ctx, userChallengeID, userID,
			userchallenge.StatusPending, userchallenge.StatusInProgress, userchallenge.StatusSnoozed)
	}
	return nil
}

// CreateCustomChallenge inserts a user-authored one-off, scheduled for today.
func (s *ChallengeService) CreateCustomChallenge(ctx context.Context, clerkID string, req *userchallenge.CreateCustomChallengeRequest, today dates.Date) (*userchallenge.View, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("description is required: %w", ErrValidation)
	}
	if req.Minutes < 1 || req.Minutes > 1440 {
		return nil, fmt.Errorf("minutes must be between 1 and 1440: %w", ErrValidation)
	}
	category := req.Category
	if category == "" {
		category = challenge.CategoryMindset
	}
	if !challenge.IsValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q: %w", category, ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	scheduled := today
	uc := &userchallenge.UserChallenge{
		ID:                uuid.New(),
		UserID:            userID,
		IsCustom:          true,
		CustomTitle:       &req.Title,
		CustomDescription: &req.Description,
		CustomCategory:    &category,
		CustomMinutes:     &req.Minutes,
		Status:            userchallenge.StatusPending,
		ScheduledDate:     &scheduled,
	}

	query := `
		INSERT INTO user_challenges (id, user_id, is_custom, custom_title, custom_description, custom_category, custom_minutes, status, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $4, $5, $6, 'pending', $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query, uc.ID, userID, req.Title, req.Description, category, req.Minutes, today.Time()).
		Scan(&uc.CreatedAt, &uc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom challenge: %w", err)
	}

	view := uc.View()
	return &view, nil
}

// GetChallengeHistory lists the caller's assignments, newest first.
func (s *ChallengeService) GetChallengeHistory(ctx context.Context, clerkID string, limit int) ([]userchallenge.View, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := userChallengeSelect + `
		WHERE uc.user_id = $1
		ORDER BY uc.created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	views := []userchallenge.View{}
	for rows.Next() {
		uc, err := s.scanUserChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		views = append(views, uc.View())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read challenges: %w", err)
	}

	return views, nil
}

// checkOwnershipAndState maps a failed mutation to the precise error: missing
// row, someone else's row, already completed, or a state that can't take the
// transition.
func (s *ChallengeService) checkOwnershipAndState(ctx context.Context, userChallengeID, userID uuid.UUID, allowedFrom ...userchallenge.Status) error {
	var ownerID uuid.UUID
	var status userchallenge.Status
	err := s.db.QueryRow(ctx, `
		SELECT user_id, status FROM user_challenges WHERE id = $1
	`, userChallengeID).Scan(&ownerID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("challenge not found: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to check challenge: %w", err)
	}

	if ownerID != userID {
		return fmt.Errorf("challenge belongs to another user: %w", ErrForbidden)
	}
	if status == userchallenge.StatusCompleted {
		return ErrAlreadyCompleted
	}
	for _, allowed := range allowedFrom {
		if status == allowed {
			return nil
		}
	}
	return fmt.Errorf("challenge is %s: %w", status, ErrValidation)
}

const userChallengeSelect = `
	SELECT uc.id, uc.user_id, uc.challenge_id, uc.is_custom,
	       uc.custom_title, uc.custom_description, uc.custom_category, uc.custom_minutes,
	       uc.status, uc.completed_at, uc.feedback, uc.notes, uc.scheduled_date,
	       uc.created_at, uc.updated_at,
	       c.id, c.category, c.day_number, c.title, c.description, c.benefit, c.difficulty, c.estimated_minutes, c.created_at
	FROM user_challenges uc
	LEFT JOIN challenges c ON uc.challenge_id = c.id
`

// userChallengeUpdate wraps an UPDATE so it returns the same column set as
// userChallengeSelect via a CTE join.
func userChallengeUpdate(setAndWhere string) string {
	return `
	WITH updated AS (
		UPDATE user_challenges uc
		` + setAndWhere + `
		RETURNING uc.*
	)
	SELECT uc.id, uc.user_id, uc.challenge_id, uc.is_custom,
	       uc.custom_title, uc.custom_description, uc.custom_category, uc.custom_minutes,
	       uc.status, uc.completed_at, uc.feedback, uc.notes, uc.scheduled_date,
	       uc.created_at, uc.updated_at,
	       c.id, c.category, c.day_number, c.title, c.description, c.benefit, c.difficulty, c.estimated_minutes, c.created_at
	FROM updated uc
	LEFT JOIN challenges c ON uc.challenge_id = c.id
	`
}

func (s *ChallengeService) scanUserChallenge(row pgx.Row) (*userchallenge.UserChallenge, error) {
	uc := &userchallenge.UserChallenge{}

	var scheduled *time.Time
	var catalogID *uuid.UUID
	var catalogCategory *challenge.Category
	var catalogDayNumber, catalogDifficulty, catalogMinutes *int
	var catalogTitle, catalogDescription, catalogBenefit *string
	var catalogCreatedAt *time.Time

	err := row.Scan(
		&uc.ID,
		&uc.UserID,
		&uc.ChallengeID,
		&uc.IsCustom,
		&uc.CustomTitle,
		&uc.CustomDescription,
		&uc.CustomCategory,
		&uc.CustomMinutes,
		&uc.Status,
		&uc.CompletedAt,
		&uc.Feedback,
		&uc.Notes,
		&scheduled,
		&uc.CreatedAt,
		&uc.UpdatedAt,
		&catalogID,
		&catalogCategory,
		&catalogDayNumber,
		&catalogTitle,
		&catalogDescription,
		&catalogBenefit,
		&catalogDifficulty,
		&catalogMinutes,
		&catalogCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	uc.ScheduledDate = toDate(scheduled)

	if catalogID != nil {
		uc.Catalog = &challenge.Challenge{
			ID:               *catalogID,
			Category:         *catalogCategory,
			DayNumber:        *catalogDayNumber,
			Title:            *catalogTitle,
			Description:      *catalogDescription,
			Benefit:          catalogBenefit,
			Difficulty:       *catalogDifficulty,
			EstimatedMinutes: *catalogMinutes,
			CreatedAt:        *catalogCreatedAt,
		}
	}

	return uc, nil
}

func (s *ChallengeService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return userID, nil
}
