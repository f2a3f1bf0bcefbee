package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"onePercentAPI/internal/dates"
	"onePercentAPI/internal/types/planner"
	"onePercentAPI/middleware"
	"onePercentAPI/services"
)

type PlannerHandler struct {
	plannerService *services.PlannerService
	userService    *services.UserService
}

func NewPlannerHandler(plannerService *services.PlannerService, userService *services.UserService) *PlannerHandler {
	return &PlannerHandler{
		plannerService: plannerService,
		userService:    userService,
	}
}

func (h *PlannerHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req planner.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.plannerService.CreateTodo(ctx, clerkID, &req)
	if err != nil {
		handleServiceError(w, err, "Failed to create todo")
		return
	}

	respondWithJSON(w, http.StatusCreated, todo)
}

func (h *PlannerHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	todoID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	todo, err := h.plannerService.ToggleTodo(ctx, clerkID, todoID)
	if err != nil {
		handleServiceError(w, err, "Failed to toggle todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (h *PlannerHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	todoID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.plannerService.DeleteTodo(ctx, clerkID, todoID); err != nil {
		handleServiceError(w, err, "Failed to delete todo")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

func (h *PlannerHandler) GetTodos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	includeDone := r.URL.Query().Get("includeDone") == "true"

	todos, err := h.plannerService.GetTodos(ctx, clerkID, includeDone)
	if err != nil {
		handleServiceError(w, err, "Failed to list todos")
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

func (h *PlannerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req planner.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.plannerService.CreateEntry(ctx, clerkID, &req)
	if err != nil {
		handleServiceError(w, err, "Failed to create planner entry")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

// GetWeek lists planner entries for the week starting at ?start=YYYY-MM-DD,
// defaulting to the Monday of the user's current local week.
func (h *PlannerHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var weekStart dates.Date
	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := dates.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'start' date")
			return
		}
		weekStart = parsed
	} else {
		today, err := h.userService.GetLocalToday(ctx, clerkID)
		if err != nil {
			handleServiceError(w, err, "Failed to resolve local date")
			return
		}
		offset := (int(today.Time().Weekday()) + 6) % 7
		weekStart = today.AddDays(-offset)
	}

	entries, err := h.plannerService.GetWeek(ctx, clerkID, weekStart)
	if err != nil {
		handleServiceError(w, err, "Failed to list planner entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *PlannerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
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

	if err := h.plannerService.DeleteEntry(ctx, clerkID, entryID); err != nil {
		handleServiceError(w, err, "Failed to delete planner entry")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Planner entry deleted"})
}
