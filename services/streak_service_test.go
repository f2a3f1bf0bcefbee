package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"onePercentAPI/internal/dates"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	ctx := context.Background()
	clerkID := "user_test_" + uuid.NewString()

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, clerk_id, email, username)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), clerkID, fmt.Sprintf("test+%s@example.com", clerkID), "testuser")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE clerk_id = $1`, clerkID)
		pool.Close()
	})

	return clerkID
}

func TestRecordCompletionLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	clerkID := createTestUser(t, pool)

	service := NewStreakService(pool)
	ctx := context.Background()

	day1 := dates.New(2024, time.March, 10)

	got, err := service.RecordCompletion(ctx, clerkID, day1)
	if err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if got.CurrentStreak != 1 || got.LongestStreak != 1 {
		t.Errorf("expected streak 1/1 after first completion, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}

	// Same day again must not double count.
	got, err = service.RecordCompletion(ctx, clerkID, day1)
	if err != nil {
		t.Fatalf("repeat completion failed: %v", err)
	}
	if got.CurrentStreak != 1 {
		t.Errorf("same-day completion changed the streak: %d", got.CurrentStreak)
	}

	// Next day extends.
	got, err = service.RecordCompletion(ctx, clerkID, day1.Next())
	if err != nil {
		t.Fatalf("second day completion failed: %v", err)
	}
	if got.CurrentStreak != 2 || got.LongestStreak != 2 {
		t.Errorf("expected streak 2/2, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}

	// A gap resets the current streak but keeps the longest.
	got, err = service.RecordCompletion(ctx, clerkID, day1.AddDays(5))
	if err != nil {
		t.Fatalf("post-gap completion failed: %v", err)
	}
	if got.CurrentStreak != 1 {
		t.Errorf("expected current streak reset to 1 after gap, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 2 {
		t.Errorf("expected longest streak to stay 2, got %d", got.LongestStreak)
	}

	stored, err := service.GetStreak(ctx, clerkID)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if stored.CurrentStreak != got.CurrentStreak || stored.LongestStreak != got.LongestStreak {
		t.Errorf("stored streak %d/%d does not match returned %d/%d",
			stored.CurrentStreak, stored.LongestStreak, got.CurrentStreak, got.LongestStreak)
	}
}

func TestGetStreakForFreshUser(t *testing.T) {
	pool := setupTestDB(t)
	clerkID := createTestUser(t, pool)

	service := NewStreakService(pool)

	got, err := service.GetStreak(context.Background(), clerkID)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if got.CurrentStreak != 0 || got.LongestStreak != 0 {
		t.Errorf("expected zeroed streak for fresh user, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}
	if got.LastCompletionDate != nil {
		t.Errorf("expected nil last completion date, got %v", got.LastCompletionDate)
	}
}
