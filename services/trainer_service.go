package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"onePercentAPI/internal/dates"
	"onePercentAPI/internal/types/challenge"
	"onePercentAPI/internal/types/trainer"
	"onePercentAPI/internal/types/userchallenge"
)

const trainerHistoryLimit = 10

type TrainerService struct {
	db         *pgxpool.Pool
	challenges *ChallengeService
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

func NewTrainerService(db *pgxpool.Pool, challenges *ChallengeService) *TrainerService {
	apiURL := os.Getenv("TRAINER_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("TRAINER_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &TrainerService{
		db:         db,
		challenges: challenges,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     os.Getenv("TRAINER_API_KEY"),
		model:      model,
	}
}

// GetSettings returns the caller's trainer settings, creating defaults on
// first access.
func (s *TrainerService) GetSettings(ctx context.Context, clerkID string) (*trainer.Settings, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.settingsFor(ctx, userID)
}

func (s *TrainerService) settingsFor(ctx context.Context, userID uuid.UUID) (*trainer.Settings, error) {
	query := `
		INSERT INTO trainer_settings (id, user_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = trainer_settings.updated_at
		RETURNING id, user_id, time_budget_minutes, focus_areas, goals, constraints, difficulty_preference, onboarding_completed, created_at, updated_at
	`

	settings := &trainer.Settings{}
	var focusAreas []string
	err := s.db.QueryRow(ctx, query, uuid.New(), userID).Scan(
		&settings.ID,
		&settings.UserID,
		&settings.TimeBudgetMinutes,
		&focusAreas,
		&settings.Goals,
		&settings.Constraints,
		&settings.DifficultyPreference,
		&settings.OnboardingCompleted,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trainer settings: %w", err)
	}

	for _, area := range focusAreas {
		settings.FocusAreas = append(settings.FocusAreas, challenge.Category(area))
	}
	return settings, nil
}

func (s *TrainerService) UpdateSettings(ctx context.Context, clerkID string, req *trainer.UpdateSettingsRequest) (*trainer.Settings, error) {
	if req.TimeBudgetMinutes != nil && (*req.TimeBudgetMinutes < 1 || *req.TimeBudgetMinutes > 1440) {
		return nil, fmt.Errorf("time budget must be between 1 and 1440 minutes: %w", ErrValidation)
	}
	if req.DifficultyPreference != nil && (*req.DifficultyPreference < 1 || *req.DifficultyPreference > 5) {
		return nil, fmt.Errorf("difficulty preference must be between 1 and 5: %w", ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// Ensure the row exists before the partial update.
	if _, err := s.settingsFor(ctx, userID); err != nil {
		return nil, err
	}

	var focusAreas []string
	if req.FocusAreas != nil {
		for _, area := range req.FocusAreas {
			focusAreas = append(focusAreas, string(area))
		}
	}

	query := `
		UPDATE trainer_settings
		SET time_budget_minutes = COALESCE($2, time_budget_minutes),
		    focus_areas = COALESCE($3, focus_areas),
		    goals = COALESCE($4, goals),
		    constraints = COALESCE($5, constraints),
		    difficulty_preference = COALESCE($6, difficulty_preference),
		    onboarding_completed = COALESCE($7, onboarding_completed),
		    updated_at = NOW()
		WHERE user_id = $1
	`

	_, err = s.db.Exec(ctx, query, userID, req.TimeBudgetMinutes, focusAreas, req.Goals, req.Constraints, req.DifficultyPreference, req.OnboardingCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to update trainer settings: %w", err)
	}

	return s.settingsFor(ctx, userID)
}

// Chat proxies one message to the chat-completion API with the user's
// settings folded into the system prompt, and persists the exchange. For
// create_challenge actions a parseable reply also creates the challenge.
func (s *TrainerService) Chat(ctx context.Context, clerkID string, req *trainer.ChatRequest) (*trainer.ChatResponse, error) {
	if req.Message == "" && req.Action != trainer.ActionGreeting {
		return nil, fmt.Errorf("message is required: %w", ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	action := req.Action
	if action == "" {
		action = trainer.ActionGeneral
	}

	settings, err := s.settingsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.recentMessages(ctx, userID, trainerHistoryLimit)
	if err != nil {
		log.Printf("Chat: failed to load history for user %s: %v", clerkID, err)
		history = nil
	}

	reply, err := s.callChatAPI(ctx, s.buildSystemPrompt(settings, action), history, req.Message)
	if err != nil {
		return nil, fmt.Errorf("trainer call failed: %w", errors.Join(ErrUpstream, err))
	}

	s.saveMessage(ctx, userID, "user", req.Message, action)
	s.saveMessage(ctx, userID, "assistant", reply, action)

	resp := &trainer.ChatResponse{Response: reply, Success: true}

	if action == trainer.ActionCreateChallenge {
		if draft, ok := trainer.ParseChallengeDraft(reply); ok {
			created, cerr := s.createFromDraft(ctx, clerkID, draft)
			if cerr != nil {
				log.Printf("Chat: failed to create challenge from draft for user %s: %v", clerkID, cerr)
			} else {
				resp.Challenge = created
				resp.Response = fmt.Sprintf("I've set up a new challenge for you: %s", draft.Title)
			}
		}
	}

	return resp, nil
}

func (s *TrainerService) createFromDraft(ctx context.Context, clerkID string, draft trainer.ChallengeDraft) (*userchallenge.View, error) {
	today, err := s.localToday(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	return s.challenges.CreateCustomChallenge(ctx, clerkID, &userchallenge.CreateCustomChallengeRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Minutes:     draft.EstimatedMinutes,
	}, today)
}

// GetHistory returns the conversation transcript, oldest first.
func (s *TrainerService) GetHistory(ctx context.Context, clerkID string, limit int) ([]*trainer.Message, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, role, content, action, created_at
		FROM trainer_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainer messages: %w", err)
	}
	defer rows.Close()

	messages := []*trainer.Message{}
	for rows.Next() {
		m := &trainer.Message{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Action, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trainer message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trainer messages: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *TrainerService) recentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]chatMessage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT role, content
		FROM trainer_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []chatMessage
	for rows.Next() {
		var m chatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

func (s *TrainerService) saveMessage(ctx context.Context, userID uuid.UUID, role, content string, action trainer.ChatAction) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trainer_messages (id, user_id, role, content, action, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.New(), userID, role, content, action)
	if err != nil {
		log.Printf("Failed to save trainer message for user %s: %v", userID, err)
	}
}

func (s *TrainerService) buildSystemPrompt(settings *trainer.Settings, action trainer.ChatAction) string {
	var b strings.Builder
	b.WriteString("You are a supportive personal trainer for a habit-building app. ")
	b.WriteString("Users work on one small daily improvement at a time. Keep replies short and encouraging.\n")

	fmt.Fprintf(&b, "The user has %d minutes per day", settings.TimeBudgetMinutes)
	if len(settings.FocusAreas) > 0 {
		areas := make([]string, len(settings.FocusAreas))
		for i, a := range settings.FocusAreas {
			areas[i] = string(a)
		}
		fmt.Fprintf(&b, " and wants to focus on: %s", strings.Join(areas, ", "))
	}
	fmt.Fprintf(&b, ". Preferred difficulty is %d out of 5.\n", settings.DifficultyPreference)
	if settings.Goals != "" {
		fmt.Fprintf(&b, "Their goals: %s\n", settings.Goals)
	}
	if settings.Constraints != "" {
		fmt.Fprintf(&b, "Their constraints: %s\n", settings.Constraints)
	}

	switch action {
	case trainer.ActionGreeting:
		b.WriteString("Greet the user warmly and ask what they want to work on today.")
	case trainer.ActionCreateChallenge, trainer.ActionScheduleChallenge:
		b.WriteString(`Create one small challenge matching their time budget and difficulty. Reply with ONLY a JSON object: {"title", "description", "category", "estimated_minutes", "difficulty", "benefit"}. Category must be one of: energy, mindset, focus, relationships, home, finance, creativity, recovery.`)
	}

	return b.String()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *TrainerService) callChatAPI(ctx context.Context, systemPrompt string, history []chatMessage, message string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("TRAINER_API_KEY is not configured")
	}

	messages := []chatMessage{{Role: "system", Content: systemPrompt}}
	messages = append(messages, history...)
	if message != "" {
		messages = append(messages, chatMessage{Role: "user", Content: message})
	}

	body, err := json.Marshal(chatCompletionRequest{Model: s.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("chat API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func (s *TrainerService) localToday(ctx context.Context, clerkID string) (dates.Date, error) {
	var tz string
	err := s.db.QueryRow(ctx, `SELECT timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&tz)
	if err != nil {
		return dates.Today(time.UTC), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return dates.Today(loc), nil
}

func (s *TrainerService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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
