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
	"onePercentAPI/internal/stats"
	"onePercentAPI/internal/types/calendar"
	"onePercentAPI/utils"
)

type StatsService struct {
	db *pgxpool.Pool
}

func NewStatsService(db *pgxpool.Pool) *StatsService {
	return &StatsService{db: db}
}

// GetUserStats assembles the dashboard numbers in one round trip per concern.
func (s *StatsService) GetUserStats(ctx context.Context, clerkID string, today dates.Date) (*stats.UserStats, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	result := &stats.UserStats{}

	query := `
	SELECT
		EXISTS (
			SELECT 1 FROM user_challenges
			WHERE user_id = $1 AND status = 'completed' AND completed_at::date = $2
		) AS completed_today,
		COUNT(DISTINCT completed_at::date) FILTER (
			WHERE completed_at::date >= $2::date - 6
		) AS days_this_week,
		COUNT(DISTINCT completed_at::date) FILTER (
			WHERE date_trunc('month', completed_at) = date_trunc('month', $2::timestamp)
		) AS days_this_month,
		COUNT(*) FILTER (WHERE status = 'completed') AS total_completed
	FROM user_challenges
	WHERE user_id = $1 AND status = 'completed'
	`

	err = s.db.QueryRow(ctx, query, userID, today.Time()).Scan(
		&result.CompletedToday,
		&result.DaysThisWeek,
		&result.DaysThisMonth,
		&result.TotalCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion stats: %w", err)
	}
	result.DayNumber = result.TotalCompleted + 1

	err = s.db.QueryRow(ctx, `
		SELECT current_streak, longest_streak FROM streaks WHERE user_id = $1
	`, userID).Scan(&result.CurrentStreak, &result.LongestStreak)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get streak stats: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM journal_entries WHERE user_id = $1
	`, userID).Scan(&result.JournalEntriesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count journal entries: %w", err)
	}

	result.MomentumScore = utils.CalculateMomentumScore(result.CurrentStreak, result.TotalCompleted, result.JournalEntriesCount)

	return result, nil
}

// GetWeeklyDaysCompleted counts distinct completion days in the trailing week.
func (s *StatsService) GetWeeklyDaysCompleted(ctx context.Context, clerkID string, today dates.Date) (*stats.DaysStat, error) {
	return s.daysCompletedSince(ctx, clerkID, today.AddDays(-6), "week", 7)
}

// GetMonthlyDaysCompleted counts distinct completion days in the trailing 30 days.
func (s *StatsService) GetMonthlyDaysCompleted(ctx context.Context, clerkID string, today dates.Date) (*stats.DaysStat, error) {
	return s.daysCompletedSince(ctx, clerkID, today.AddDays(-29), "month", 30)
}

func (s *StatsService) GetAllTimeDaysCompleted(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	result := &stats.DaysStat{Period: "all_time"}
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT completed_at::date)
		FROM user_challenges
		WHERE user_id = $1 AND status = 'completed'
	`, userID).Scan(&result.DaysCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completion days: %w", err)
	}
	result.TotalDays = result.DaysCompleted

	return result, nil
}

func (s *StatsService) daysCompletedSince(ctx context.Context, clerkID string, since dates.Date, period string, totalDays int) (*stats.DaysStat, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	result := &stats.DaysStat{Period: period, TotalDays: totalDays}
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT completed_at::date)
		FROM user_challenges
		WHERE user_id = $1 AND status = 'completed' AND completed_at::date >= $2
	`, userID, since.Time()).Scan(&result.DaysCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completion days: %w", err)
	}

	return result, nil
}

// GetCalendar marks which days of a month had at least one completion.
func (s *StatsService) GetCalendar(ctx context.Context, clerkID string, year int, month int, today dates.Date) (*calendar.CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12: %w", ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT completed_at::date
		FROM user_challenges
		WHERE user_id = $1
		  AND status = 'completed'
		  AND date_trunc('month', completed_at) = make_date($2, $3, 1)
	`, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}
	defer rows.Close()

	completed := map[string]bool{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan calendar day: %w", err)
		}
		completed[dates.FromTime(day, time.UTC).String()] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}

	response := &calendar.CalendarResponse{Year: year, Month: month}
	first := dates.New(year, time.Month(month), 1)
	for d := first; int(d.Month) == month; d = d.Next() {
		response.Days = append(response.Days, &calendar.CalendarDay{
			Date:      d.Time(),
			Completed: completed[d.String()],
			IsToday:   d.Equal(today),
		})
	}

	return response, nil
}

func (s *StatsService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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
