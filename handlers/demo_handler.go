package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"onePercentAPI/services"
	"onePercentAPI/utils"
)

// DemoHandler serves the unauthenticated landing-page flow.
type DemoHandler struct {
	demoService *services.DemoService
}

func NewDemoHandler(demoService *services.DemoService) *DemoHandler {
	return &DemoHandler{
		demoService: demoService,
	}
}

func (h *DemoHandler) GetDemoChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req utils.DemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.demoService.GetDemoChallenge(ctx, &req)
	if err != nil {
		handleServiceError(w, err, "Failed to pick a demo challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}
