package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"onePercentAPI/middleware"
	"onePercentAPI/services"
)

type StatsHandler struct {
	statsService  *services.StatsService
	streakService *services.StreakService
	userService   *services.UserService
}

func NewStatsHandler(statsService *services.StatsService, streakService *services.StreakService, userService *services.UserService) *StatsHandler {
	return &StatsHandler{
		statsService:  statsService,
		streakService: streakService,
		userService:   userService,
	}
}

func (h *StatsHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.statsService.GetUserStats(ctx, clerkID, today)
	if err != nil {
		handleServiceError(w, err, "Failed to get stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	streak, err := h.streakService.GetStreak(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to get streak")
		return
	}

	respondWithJSON(w, http.StatusOK, streak)
}

// GetDaysCompleted handles /stats/days?period=week|month|all.
func (h *StatsHandler) GetDaysCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "all" {
		stat, err := h.statsService.GetAllTimeDaysCompleted(ctx, clerkID)
		if err != nil {
			handleServiceError(w, err, "Failed to count completion days")
			return
		}
		respondWithJSON(w, http.StatusOK, stat)
		return
	}

	today, err := h.userService.GetLocalToday(ctx, clerkID)
	if err != nil {
		handleServiceError(w, err, "Failed to resolve local date")
		return
	}

	switch period {
	case "", "week":
		stat, err := h.statsService.GetWeeklyDaysCompleted(ctx, clerkID, today)
		if err != nil {
			handleServiceError(w, err, "Failed to count completion days")
			return
		}
		respondWithJSON(w, http.StatusOK, stat)
	case "month":
		stat, err := h.statsService.GetMonthlyDaysCompleted(ctx, clerkID, today)
		if err != nil {
			handleServiceError(w, err, "Failed to count completion days")
			return
		}
		respondWithJSON(w, http.StatusOK, stat)
	default:
		respondWithError(w, http.StatusBadRequest, "period must be week, month or all")
	}
}

// GetCalendar returns the completion calendar for ?year=YYYY&month=M,
// defaulting to the user's current local month.
func (h *StatsHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
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

	year := today.Year
	month := int(today.Month)
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
	}

	calendar, err := h.statsService.GetCalendar(ctx, clerkID, year, month, today)
	if err != nil {
		handleServiceError(w, err, "Failed to load calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, calendar)
}
