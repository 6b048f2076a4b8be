package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub-api/config"
	"eventhub-api/database"
	"eventhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubGateway struct{}

func (stubGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*services.Intent, error) {
	return &services.Intent{ID: "pi_stub", ClientSecret: "pi_stub_secret", Status: "requires_payment_method"}, nil
}

func (stubGateway) RetrieveIntent(ctx context.Context, id string) (*services.Intent, error) {
	return &services.Intent{ID: id, Status: services.IntentSucceeded}, nil
}

func (stubGateway) Refund(ctx context.Context, chargeID string, amountMinor int64, idempotencyKey string) error {
	return nil
}

func (stubGateway) VerifyWebhook(payload []byte, signature string) (*services.WebhookEvent, error) {
	return nil, errors.New("signature mismatch")
}

type silentNotifier struct{}

func (silentNotifier) SendEnrollmentEmail(string, string, services.EventMailInfo) error { return nil }
func (silentNotifier) SendPaymentReceiptEmail(string, string, services.EventMailInfo, string, float64) error {
	return nil
}
func (silentNotifier) SendRefundEmail(string, string, services.EventMailInfo, float64) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()), false)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:          "route-secret",
		TicketSecret:       "ticket-secret",
		PaymentCurrency:    "usd",
		ReservationTTL:     30 * time.Minute,
		RateLimitPerMinute: 6000,
		RateLimitBurst:     1000,
	}
	r := gin.New()
	SetupRoutes(r, NewServices(db, cfg, stubGateway{}, silentNotifier{}), cfg)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func register(t *testing.T, r http.Handler, name, role string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": name, "email": name + "@example.com", "password": "secret1", "role": role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", name, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	return resp.Token
}

func TestAPI_EventLifecycle(t *testing.T) {
	r := newTestRouter(t)
	hostToken := register(t, r, "hana", "HOST")
	userToken := register(t, r, "alice", "USER")

	w := doJSON(t, r, http.MethodPost, "/api/v1/events", userToken, gin.H{})
	if w.Code != http.StatusForbidden {
		t.Fatalf("user create event: status = %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/events", hostToken, gin.H{
		"name":            "Board game night",
		"type":            "games",
		"description":     "An evening of board games",
		"eventDate":       time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"location":        "Community hall",
		"maxParticipants": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decode(t, w, &created)
	eventID := created.Data.ID

	w = doJSON(t, r, http.MethodPost, "/api/v1/participants/join", userToken, gin.H{"eventId": eventID})
	if w.Code != http.StatusCreated {
		t.Fatalf("join: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/participants/join", hostToken, gin.H{"eventId": eventID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("join full event: status = %d, want 400", w.Code)
	}
	var errBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	decode(t, w, &errBody)
	if errBody.Error != "bad_request" || errBody.Message != "event is already full" || errBody.Code != http.StatusBadRequest {
		t.Errorf("unexpected error envelope %+v", errBody)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/events?status=FULL", "", nil)
	var listed struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &listed)
	if w.Code != http.StatusOK || listed.Total != 1 {
		t.Errorf("list FULL events: %d total=%d", w.Code, listed.Total)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/participants/event/"+eventID, hostToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("participants for host: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/participants/ticket/"+eventID, nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	tw := httptest.NewRecorder()
	r.ServeHTTP(tw, req)
	if tw.Code != http.StatusOK || tw.Header().Get("Content-Type") != "image/png" {
		t.Errorf("ticket: %d %s", tw.Code, tw.Header().Get("Content-Type"))
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/participants/leave/"+eventID, userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leave: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodDelete, "/api/v1/participants/leave/"+eventID, userToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second leave: status = %d, want 404", w.Code)
	}
}

func TestAPI_AuthAndWebhook(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/participants/my-events", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: status = %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ghost@example.com", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")
	ww := httptest.NewRecorder()
	r.ServeHTTP(ww, req)
	if ww.Code != http.StatusBadRequest {
		t.Errorf("forged webhook: status = %d, want 400", ww.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ping: %d", w.Code)
	}
}
