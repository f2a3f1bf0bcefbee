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
	"onePercentAPI/internal/types/planner"
)

type PlannerService struct {
	db *pgxpool.Pool
}

func NewPlannerService(db *pgxpool.Pool) *PlannerService {
	return &PlannerService{db: db}
}

func (s *PlannerService) CreateTodo(ctx context.Context, clerkID string, req *planner.CreateTodoRequest) (*planner.Todo, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}

	var dueDate *dates.Date
	if req.DueDate != "" {
		parsed, err := dates.Parse(req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err, ErrValidation)
		}
		dueDate = &parsed
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	todo := &planner.Todo{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   req.Title,
		DueDate: dueDate,
	}

	query := `
		INSERT INTO todos (id, user_id, title, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query, todo.ID, userID, req.Title, fromDate(dueDate)).
		Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// ToggleTodo flips the done flag and returns the new state.
func (s *PlannerService) ToggleTodo(ctx context.Context, clerkID string, todoID uuid.UUID) (*planner.Todo, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE todos
		SET done = NOT done, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, done, due_date, created_at, updated_at
	`

	todo, err := s.scanTodo(s.db.QueryRow(ctx, query, todoID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("todo not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}
	return todo, nil
}

func (s *PlannerService) DeleteTodo(ctx context.Context, clerkID string, todoID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("todo not found: %w", ErrNotFound)
	}
	return nil
}

func (s *PlannerService) GetTodos(ctx context.Context, clerkID string, includeDone bool) ([]*planner.Todo, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, title, done, due_date, created_at, updated_at
		FROM todos
		WHERE user_id = $1 AND ($2 OR NOT done)
		ORDER BY due_date NULLS LAST, created_at
	`

	rows, err := s.db.Query(ctx, query, userID, includeDone)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*planner.Todo{}
	for rows.Next() {
		todo, err := s.scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}

	return todos, nil
}

func (s *PlannerService) CreateEntry(ctx context.Context, clerkID string, req *planner.CreateEntryRequest) (*planner.Entry, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	entryDate, err := dates.Parse(req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	entry := &planner.Entry{
		ID:        uuid.New(),
		UserID:    userID,
		EntryDate: entryDate,
		TimeSlot:  req.TimeSlot,
		Title:     req.Title,
		Notes:     req.Notes,
	}

	query := `
		INSERT INTO planner_entries (id, user_id, entry_date, time_slot, title, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query, entry.ID, userID, entryDate.Time(), req.TimeSlot, req.Title, req.Notes).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create planner entry: %w", err)
	}

	return entry, nil
}

// GetWeek returns planner entries for the seven days starting at weekStart.
func (s *PlannerService) GetWeek(ctx context.Context, clerkID string, weekStart dates.Date) ([]*planner.Entry, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, entry_date, time_slot, title, notes, created_at, updated_at
		FROM planner_entries
		WHERE user_id = $1 AND entry_date >= $2 AND entry_date < $3
		ORDER BY entry_date, time_slot, created_at
	`

	rows, err := s.db.Query(ctx, query, userID, weekStart.Time(), weekStart.AddDays(7).Time())
	if err != nil {
		return nil, fmt.Errorf("failed to list planner entries: %w", err)
	}
	defer rows.Close()

	entries := []*planner.Entry{}
	for rows.Next() {
		entry := &planner.Entry{}
		var entryDate time.Time
		err := rows.Scan(&entry.ID, &entry.UserID, &entryDate, &entry.TimeSlot, &entry.Title, &entry.Notes, &entry.CreatedAt, &entry.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planner entry: %w", err)
		}
		entry.EntryDate = dates.FromTime(entryDate, time.UTC)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read planner entries: %w", err)
	}

	return entries, nil
}

func (s *PlannerService) DeleteEntry(ctx context.Context, clerkID string, entryID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM planner_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete planner entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("planner entry not found: %w", ErrNotFound)
	}
	return nil
}

func (s *PlannerService) scanTodo(row pgx.Row) (*planner.Todo, error) {
	todo := &planner.Todo{}
	var dueDate *time.Time
	err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Done, &dueDate, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	todo.DueDate = toDate(dueDate)
	return todo, nil
}

func (s *PlannerService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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
