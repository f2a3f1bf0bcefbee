package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"onePercentAPI/internal/types/userchallenge"
	"onePercentAPI/middleware"
	"onePercentAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	userService      *services.UserService
}

func NewChallengeHandler(challengeService *services.ChallengeService, userService *services.UserService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		userService:      userService,
	}
}

// GetTodayChallenge returns the pending challenge for the user's local day,
// assigning one from the catalog when nothing is pending yet.
func (h *ChallengeHandler) GetTodayChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	today, err := h.userService.GetLocalToday(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to resolve local date")
		return
	}

	response, err := h.challengeService.GetTodayChallenge(ctx, clerkID, today)
	if err != nil {
		handleServiceError(w, err, "Failed to get today's challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}

func (h *ChallengeHandler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	req := &userchallenge.CompleteChallengeRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	today, err := h.userService.GetLocalToday(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to resolve local date")
		return
	}

	result, err := h.challengeService.CompleteChallenge(ctx, clerkID, challengeID, req, today)
	if err != nil {
		handleServiceError(w, err, "Failed to complete challenge")
		return
	}

	middleware.RecordChallengeCompletion()
	respondWithJSON(w, http.StatusOK, result)
}

func (h *ChallengeHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.challengeService.StartChallenge)
}

func (h *ChallengeHandler) SnoozeChallenge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.challengeService.SnoozeChallenge)
}

func (h *ChallengeHandler) SkipChallenge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.challengeService.SkipChallenge)
}

func (h *ChallengeHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string, uuid.UUID) (*userchallenge.View, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	view, err := op(ctx, clerkID, challengeID)
	if err != nil {
		handleServiceError(w, err, "Failed to update challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.challengeService.DeleteUserChallenge(ctx, clerkID, challengeID); err != nil {
		handleServiceError(w, err, "Failed to delete challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted"})
}

func (h *ChallengeHandler) CreateCustomChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req userchallenge.CreateCustomChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	today, err := h.userService.GetLocalToday(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to resolve local date")
		return
	}

	view, err := h.challengeService.CreateCustomChallenge(ctx, clerkID, &req, today)
	if err != nil {
		handleServiceError(w, err, "Failed to create custom challenge")
		return
	}

	respondWithJSON(w, http.StatusCreated, view)
}

func (h *ChallengeHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.challengeService.GetChallengeHistory(ctx, clerkID, limit)
	if err != nil {
		handleServiceError(w, err, "Failed to get challenge history")
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}
