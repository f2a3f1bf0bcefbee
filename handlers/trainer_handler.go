package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"onePercentAPI/internal/types/trainer"
	"onePercentAPI/middleware"
	"onePercentAPI/services"
)

type TrainerHandler struct {
	trainerService *services.TrainerService
}

func NewTrainerHandler(trainerService *services.TrainerService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
	}
}

// Chat proxies one message to the language model. The upstream call gets a
// longer deadline than the usual 5s because model latency is out of our hands.
func (h *TrainerHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req trainer.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.trainerService.Chat(ctx, clerkID, &req)
	if err != nil {
		middleware.RecordTrainerRequest("error")
		handleServiceError(w, err, "Failed to reach trainer")
		return
	}

	middleware.RecordTrainerRequest("ok")
	respondWithJSON(w, http.StatusOK, response)
}

func (h *TrainerHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	settings, err := h.trainerService.GetSettings(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to get trainer settings")
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

func (h *TrainerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req trainer.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.trainerService.UpdateSettings(ctx, clerkID, &req)
	if err != nil {
		handleServiceError(w, err, "Failed to update trainer settings")
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

func (h *TrainerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.trainerService.GetHistory(ctx, clerkID, limit)
	if err != nil {
		handleServiceError(w, err, "Failed to get chat history")
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}
