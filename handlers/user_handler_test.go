package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"onePercentAPI/services"
)

func TestHandleServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("title is required: %w", services.ErrValidation), http.StatusBadRequest},
		{"forbidden", fmt.Errorf("not yours: %w", services.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("challenge not found: %w", services.ErrNotFound), http.StatusNotFound},
		{"already completed", fmt.Errorf("done already: %w", services.ErrAlreadyCompleted), http.StatusConflict},
		{"upstream", fmt.Errorf("model call failed: %w", services.ErrUpstream), http.StatusBadGateway},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleServiceError(rr, tc.err, "something went wrong")

			if rr.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rr.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error message in the body")
			}
		})
	}
}

func TestHandleServiceErrorHidesInternals(t *testing.T) {
	rr := httptest.NewRecorder()
	handleServiceError(rr, fmt.Errorf("pq: relation users does not exist"), "Failed to load profile")

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != "Failed to load profile" {
		t.Errorf("internal error leaked to the client: %q", body["error"])
	}
}

func TestRespondWithJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithJSON(rr, http.StatusCreated, map[string]int{"count": 3})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json content type, got %q", ct)
	}

	var body map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["count"] != 3 {
		t.Errorf("unexpected body: %v", body)
	}
}
