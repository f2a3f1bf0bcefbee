package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"onePercentAPI/internal/dates"
	"onePercentAPI/internal/types/journal"
	"onePercentAPI/middleware"
	"onePercentAPI/services"
)

type JournalHandler struct {
	journalService *services.JournalService
	userService    *services.UserService
}

func NewJournalHandler(journalService *services.JournalService, userService *services.UserService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		userService:    userService,
	}
}

func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req journal.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	today, err := h.userService.GetLocalToday(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to resolve local date")
		return
	}

	entry, err := h.journalService.CreateEntry(ctx, clerkID, &req, today)
	if err != nil {
		handleServiceError(w, err, "Failed to create journal entry")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req journal.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.journalService.UpdateEntry(ctx, clerkID, entryID, &req)
	if err != nil {
		handleServiceError(w, err, "Failed to update journal entry")
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.journalService.DeleteEntry(ctx, clerkID, entryID); err != nil {
		handleServiceError(w, err, "Failed to delete journal entry")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Journal entry deleted"})
}

// GetEntries supports optional ?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=N filters.
func (h *JournalHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var from, to *dates.Date
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := dates.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'from' date")
			return
		}
		from = &parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := dates.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'to' date")
			return
		}
		to = &parsed
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.journalService.GetEntries(ctx, clerkID, from, to, limit)
	if err != nil {
		handleServiceError(w, err, "Failed to list journal entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
