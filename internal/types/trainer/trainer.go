package trainer

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"onePercentAPI/internal/types/challenge"
)

type Settings struct {
	ID                   uuid.UUID            `json:"id" db:"id"`
	UserID               uuid.UUID            `json:"user_id" db:"user_id"`
	TimeBudgetMinutes    int                  `json:"time_budget_minutes" db:"time_budget_minutes"`
	FocusAreas           []challenge.Category `json:"focus_areas" db:"focus_areas"`
	Goals                string               `json:"goals" db:"goals"`
	Constraints          string               `json:"constraints" db:"constraints"`
	DifficultyPreference int                  `json:"difficulty_preference" db:"difficulty_preference"`
	OnboardingCompleted  bool                 `json:"onboarding_completed" db:"onboarding_completed"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
}

// PreferredCategory is the category the assignment policy pulls from. First
// focus area wins; users without focus areas get mindset.
func (s *Settings) PreferredCategory() challenge.Category {
	if s != nil && len(s.FocusAreas) > 0 {
		return s.FocusAreas[0]
	}
	return challenge.CategoryMindset
}

type UpdateSettingsRequest struct {
	TimeBudgetMinutes    *int                 `json:"time_budget_minutes,omitempty"`
	FocusAreas           []challenge.Category `json:"focus_areas,omitempty"`
	Goals                *string              `json:"goals,omitempty"`
	Constraints          *string              `json:"constraints,omitempty"`
	DifficultyPreference *int                 `json:"difficulty_preference,omitempty"`
	OnboardingCompleted  *bool                `json:"onboarding_completed,omitempty"`
}

const (
	FeedbackTooEasy   = "too_easy"
	FeedbackTooHard   = "too_hard"
	FeedbackJustRight = "just_right"
)

// AdjustDifficulty nudges the 1-5 preference based on completion feedback.
// Unknown feedback strings leave it alone.
func AdjustDifficulty(pref int, feedback string) int {
	switch feedback {
	case FeedbackTooEasy:
		if pref < 5 {
			return pref + 1
		}
	case FeedbackTooHard:
		if pref > 1 {
			return pref - 1
		}
	}
	return pref
}

type ChatAction string

const (
	ActionGeneral           ChatAction = "general"
	ActionCreateChallenge   ChatAction = "create_challenge"
	ActionGreeting          ChatAction = "greeting"
	ActionScheduleChallenge ChatAction = "schedule_challenge"
)

type ChatRequest struct {
	Message string     `json:"message"`
	Action  ChatAction `json:"action,omitempty"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	Success   bool   `json:"success"`
	Challenge any    `json:"challenge,omitempty"`
}

type Message struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Role      string     `json:"role" db:"role"`
	Content   string     `json:"content" db:"content"`
	Action    ChatAction `json:"action" db:"action"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ChallengeDraft is the strict JSON shape the model is asked to produce for
// create_challenge requests.
type ChallengeDraft struct {
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Category         challenge.Category `json:"category"`
	EstimatedMinutes int                `json:"estimated_minutes"`
	Difficulty       int                `json:"difficulty"`
	Benefit          string             `json:"benefit,omitempty"`
}

// ParseChallengeDraft attempts to read a model reply as a challenge draft.
// Models wrap JSON in markdown fences or chatter often enough that we scan for
// the outermost object before unmarshalling. ok=false means the reply should
// be treated as plain conversation.
func ParseChallengeDraft(reply string) (ChallengeDraft, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ChallengeDraft{}, false
	}

	var draft ChallengeDraft
	if err := json.Unmarshal([]byte(reply[start:end+1]), &draft); err != nil {
		return ChallengeDraft{}, false
	}
	if draft.Title == "" || draft.Description == "" {
		return ChallengeDraft{}, false
	}
	if !challenge.IsValidCategory(draft.Category) {
		draft.Category = challenge.CategoryMindset
	}
	if draft.EstimatedMinutes < 1 || draft.EstimatedMinutes > 1440 {
		draft.EstimatedMinutes = 10
	}
	return draft, true
}
