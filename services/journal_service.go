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
	"onePercentAPI/internal/types/journal"
)

type JournalService struct {
	db *pgxpool.Pool
}

func NewJournalService(db *pgxpool.Pool) *JournalService {
	return &JournalService{db: db}
}

func (s *JournalService) CreateEntry(ctx context.Context, clerkID string, req *journal.CreateEntryRequest, today dates.Date) (*journal.Entry, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("content is required: %w", ErrValidation)
	}

	entryDate := today
	if req.EntryDate != "" {
		parsed, err := dates.Parse(req.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err, ErrValidation)
		}
		entryDate = parsed
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	entry := &journal.Entry{
		ID:        uuid.New(),
		UserID:    userID,
		EntryDate: entryDate,
		Content:   req.Content,
		Mood:      req.Mood,
	}

	query := `
		INSERT INTO journal_entries (id, user_id, entry_date, content, mood, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query, entry.ID, userID, entryDate.Time(), req.Content, req.Mood).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return entry, nil
}

func (s *JournalService) UpdateEntry(ctx context.Context, clerkID string, entryID uuid.UUID, req *journal.UpdateEntryRequest) (*journal.Entry, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE journal_entries
		SET content = COALESCE($3, content),
		    mood = COALESCE($4, mood),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, entry_date, content, mood, created_at, updated_at
	`

	entry, err := s.scanEntry(s.db.QueryRow(ctx, query, entryID, userID, req.Content, req.Mood))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.mapMissing(ctx, entryID)
		}
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	return entry, nil
}

func (s *JournalService) DeleteEntry(ctx context.Context, clerkID string, entryID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM journal_entries WHERE id = $1 AND user_id = $2
	`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return s.mapMissing(ctx, entryID)
	}
	return nil
}

func (s *JournalService) GetEntries(ctx context.Context, clerkID string, from, to *dates.Date, limit int) ([]*journal.Entry, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, user_id, entry_date, content, mood, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1
		  AND ($2::date IS NULL OR entry_date >= $2)
		  AND ($3::date IS NULL OR entry_date <= $3)
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $4
	`

	rows, err := s.db.Query(ctx, query, userID, fromDate(from), fromDate(to), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []*journal.Entry{}
	for rows.Next() {
		entry, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal entries: %w", err)
	}

	return entries, nil
}

func (s *JournalService) scanEntry(row pgx.Row) (*journal.Entry, error) {
	entry := &journal.Entry{}
	var entryDate time.Time
	err := row.Scan(&entry.ID, &entry.UserID, &entryDate, &entry.Content, &entry.Mood, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	entry.EntryDate = dates.FromTime(entryDate, time.UTC)
	return entry, nil
}

func (s *JournalService) mapMissing(ctx context.Context, entryID uuid.UUID) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM journal_entries WHERE id = $1)`, entryID).Scan(&exists); err == nil && exists {
		return fmt.Errorf("journal entry belongs to another user: %w", ErrForbidden)
	}
	return fmt.Errorf("journal entry not found: %w", ErrNotFound)
}

func (s *JournalService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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
