package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"onePercentAPI/internal/dates"
	"onePercentAPI/internal/types/streak"
	"onePercentAPI/utils"
)

type StreakService struct {
	db       *pgxpool.Pool
	notifier utils.NotificationCreator
}

func NewStreakService(db *pgxpool.Pool) *StreakService {
	return &StreakService{db: db}
}

// SetNotifier wires the milestone notification sink. Optional.
func (s *StreakService) SetNotifier(n utils.NotificationCreator) {
	s.notifier = n
}

// RecordCompletion applies one challenge completion on the given calendar day
// to the caller's streak. The row is locked for the read-modify-write so two
// completions racing on the same day cannot double-increment.
func (s *StreakService) RecordCompletion(ctx context.Context, clerkID string, day dates.Date) (*streak.Streak, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin streak update: %w", err)
	}
	defer tx.Rollback(ctx)

	current := streak.Streak{ID: uuid.New(), UserID: userID}

	var lastCompletion, streakStart *time.Time
	err = tx.QueryRow(ctx, `
		SELECT id, current_streak, longest_streak, last_completion_date, streak_start_date
		FROM streaks
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&current.ID, &current.CurrentStreak, &current.LongestStreak, &lastCompletion, &streakStart)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}
	current.LastCompletionDate = toDate(lastCompletion)
	current.StreakStartDate = toDate(streakStart)

	updated := streak.Advance(current, day)

	query := `
		INSERT INTO streaks (id, user_id, current_streak, longest_streak, last_completion_date, streak_start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			current_streak = $3,
			longest_streak = $4,
			last_completion_date = $5,
			streak_start_date = $6,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		updated.ID,
		updated.UserID,
		updated.CurrentStreak,
		updated.LongestStreak,
		fromDate(updated.LastCompletionDate),
		fromDate(updated.StreakStartDate),
	).Scan(&updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save streak: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit streak update: %w", err)
	}

	if s.notifier != nil && updated.CurrentStreak > current.CurrentStreak {
		utils.StreakMilestoneReached(s.notifier, userID, updated.CurrentStreak)
	}

	return &updated, nil
}

// GetStreak returns the caller's streak, or zeroed counters if nothing has
// been completed yet.
func (s *StreakService) GetStreak(ctx context.Context, clerkID string) (*streak.Streak, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	result := &streak.Streak{UserID: userID}

	var lastCompletion, streakStart *time.Time
	err = s.db.QueryRow(ctx, `
		SELECT id, current_streak, longest_streak, last_completion_date, streak_start_date, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`, userID).Scan(
		&result.ID,
		&result.CurrentStreak,
		&result.LongestStreak,
		&lastCompletion,
		&streakStart,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	result.LastCompletionDate = toDate(lastCompletion)
	result.StreakStartDate = toDate(streakStart)

	return result, nil
}

func (s *StreakService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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

func toDate(t *time.Time) *dates.Date {
	if t == nil {
		return nil
	}
	d := dates.FromTime(*t, time.UTC)
	return &d
}

func fromDate(d *dates.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}
