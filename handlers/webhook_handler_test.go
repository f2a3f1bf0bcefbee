package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// session.created is not a handled event type, so these requests never touch
// the user service and the handler can run without a database.
const ignoredEvent = `{"type": "session.created", "data": {"id": "sess_123"}}`

func signPayload(secret, svixID, svixTimestamp, body string) string {
	signedContent := fmt.Sprintf("%s.%s.%s", svixID, svixTimestamp, body)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedContent))
	return "v1," + hex.EncodeToString(mac.Sum(nil))
}

func TestClerkWebhookValidSignature(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	handler := NewWebhookHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader([]byte(ignoredEvent)))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", signPayload("whsec_test", "msg_1", "1700000000", ignoredEvent))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for a correctly signed webhook, got %d", rr.Code)
	}
}

func TestClerkWebhookInvalidSignature(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	handler := NewWebhookHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader([]byte(ignoredEvent)))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", signPayload("wrong_secret", "msg_1", "1700000000", ignoredEvent))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a tampered webhook, got %d", rr.Code)
	}
}

func TestClerkWebhookMissingSignatureHeaders(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	handler := NewWebhookHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader([]byte(ignoredEvent)))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when svix headers are missing, got %d", rr.Code)
	}
}

func TestClerkWebhookSkipsVerificationWithoutSecret(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "")

	handler := NewWebhookHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader([]byte(ignoredEvent)))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 in dev mode without a secret, got %d", rr.Code)
	}
}

func TestClerkWebhookRejectsMalformedBody(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "")

	handler := NewWebhookHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rr.Code)
	}
}
