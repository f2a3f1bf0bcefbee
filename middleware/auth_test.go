package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// mintToken builds a syntactically valid JWT that Clerk will never accept:
// wrong algorithm, unknown signer.
func mintToken(t *testing.T, clerkID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-testing-only"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestClerkAuthMiddlewareMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	rr := httptest.NewRecorder()

	ClerkAuthMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing header, got %d", rr.Code)
	}
}

func TestClerkAuthMiddlewareBadFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Token abc123")
	rr := httptest.NewRecorder()

	ClerkAuthMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-Bearer header, got %d", rr.Code)
	}
}

func TestClerkAuthMiddlewareRejectsForeignToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "user_123"))
	rr := httptest.NewRecorder()

	ClerkAuthMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for token signed by unknown key, got %d", rr.Code)
	}
}

func TestOptionalAuthMiddlewarePassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/demo/challenge", nil)
	rr := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetClerkID(r.Context()); ok {
			t.Error("expected no clerk ID for anonymous request")
		}
	})

	OptionalAuthMiddleware(next).ServeHTTP(rr, req)

	if !called {
		t.Fatal("next handler was not called")
	}
}

func TestGetClerkIDEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetClerkID(req.Context()); ok {
		t.Error("expected no clerk ID in a bare context")
	}
}
