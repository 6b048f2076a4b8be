package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventhub-api/database"
	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/google/uuid"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeCreate struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

type fakeRefund struct {
	ChargeID string
	Amount   int64
	Key      string
}

type fakeGateway struct {
	mu        sync.Mutex
	seq       int
	intents   map[string]*Intent
	creates   []fakeCreate
	refunds   []fakeRefund
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*Intent)}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.seq++
	id := fmt.Sprintf("pi_test_%d", g.seq)
	g.intents[id] = &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		ChargeID:     fmt.Sprintf("ch_test_%d", g.seq),
	}
	g.creates = append(g.creates, fakeCreate{Amount: amountMinor, Currency: currency, Metadata: metadata})
	out := *g.intents[id]
	return &out, nil
}

func (g *fakeGateway) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", id)
	}
	out := *intent
	return &out, nil
}

func (g *fakeGateway) Refund(ctx context.Context, chargeID string, amountMinor int64, idempotencyKey string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, fakeRefund{ChargeID: chargeID, Amount: amountMinor, Key: idempotencyKey})
	return nil
}

// VerifyWebhook accepts the signature "valid" and decodes the payload as a WebhookEvent.
func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if signature != "valid" {
		return nil, errors.New("signature mismatch")
	}
	var evt WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}

func (g *fakeGateway) succeed(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id].Status = IntentSucceeded
}

func (g *fakeGateway) refundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.refunds)
}

func (g *fakeGateway) createCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.creates)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) record(kind, to string) error {
	n.mu.Lock()
	n.sent = append(n.sent, kind+":"+to)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) SendEnrollmentEmail(to, name string, event EventMailInfo) error {
	return n.record("enrollment", to)
}

func (n *recordingNotifier) SendPaymentReceiptEmail(to, name string, event EventMailInfo, transactionID string, amount float64) error {
	return n.record("receipt", to)
}

func (n *recordingNotifier) SendRefundEmail(to, name string, event EventMailInfo, amount float64) error {
	return n.record("refund", to)
}

type testEnv struct {
	t          *testing.T
	ctx        context.Context
	store      *repositories.Store
	clock      *testClock
	gateway    *fakeGateway
	notifier   *recordingNotifier
	enrollment *EnrollmentService
	payments   *PaymentService
	reviews    *ReviewService
	events     *EventService
	tickets    *TicketService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Initialize("sqlite", dsn, false)
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

	store := repositories.NewStore(db)
	clock := &testClock{now: baseTime}
	gateway := newFakeGateway()
	notifier := &recordingNotifier{}

	enrollment := NewEnrollmentService(store, gateway, notifier, "usd", 30*time.Minute)
	enrollment.now = clock.Now
	payments := NewPaymentService(store, gateway, notifier)
	payments.now = clock.Now
	reviews := NewReviewService(store)
	reviews.now = clock.Now
	events := NewEventService(store)
	events.now = clock.Now
	tickets := NewTicketService(store, "ticket-secret")
	tickets.now = clock.Now

	return &testEnv{
		t:          t,
		ctx:        context.Background(),
		store:      store,
		clock:      clock,
		gateway:    gateway,
		notifier:   notifier,
		enrollment: enrollment,
		payments:   payments,
		reviews:    reviews,
		events:     events,
		tickets:    tickets,
	}
}

func (e *testEnv) user(name string, role models.Role) models.Caller {
	e.t.Helper()
	u := &models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.New().String()[:6]),
		Password: "x",
		Role:     role,
	}
	if err := e.store.CreateUser(e.ctx, u); err != nil {
		e.t.Fatalf("CreateUser: %v", err)
	}
	return models.Caller{UserID: u.ID, Email: u.Email, Role: role}
}

func (e *testEnv) host(name string) (models.Caller, *models.Host) {
	e.t.Helper()
	caller := e.user(name, models.RoleHost)
	h := &models.Host{ID: uuid.New().String(), UserID: caller.UserID, Name: name, Email: caller.Email}
	if err := e.store.CreateHost(e.ctx, h); err != nil {
		e.t.Fatalf("CreateHost: %v", err)
	}
	return caller, h
}

type eventOpt func(*models.Event)

func withFee(fee float64) eventOpt { return func(ev *models.Event) { ev.JoiningFee = fee } }
func withMax(n int) eventOpt       { return func(ev *models.Event) { ev.MaxParticipants = n } }
func withStatus(s models.EventStatus) eventOpt {
	return func(ev *models.Event) { ev.Status = s }
}
func startingIn(d time.Duration) eventOpt {
	return func(ev *models.Event) { ev.EventDate = baseTime.Add(d) }
}

func (e *testEnv) event(host *models.Host, opts ...eventOpt) *models.Event {
	e.t.Helper()
	ev := &models.Event{
		ID:              uuid.New().String(),
		HostID:          host.ID,
		Name:            "Board game night",
		Type:            "games",
		Description:     "An evening of board games",
		EventDate:       baseTime.Add(72 * time.Hour),
		Location:        "Community hall",
		Currency:        "USD",
		MinParticipants: 1,
		MaxParticipants: 10,
		Status:          models.EventStatusOpen,
	}
	for _, opt := range opts {
		opt(ev)
	}
	if err := e.store.CreateEvent(e.ctx, ev); err != nil {
		e.t.Fatalf("CreateEvent: %v", err)
	}
	return ev
}

func (e *testEnv) reload(eventID string) *models.Event {
	e.t.Helper()
	ev, err := e.store.FindEventByID(e.ctx, eventID)
	if err != nil {
		e.t.Fatalf("FindEventByID: %v", err)
	}
	return ev
}

func (e *testEnv) participant(userID, eventID string) *models.Participant {
	e.t.Helper()
	p, err := e.store.FindParticipant(e.ctx, userID, eventID)
	if err != nil {
		e.t.Fatalf("FindParticipant: %v", err)
	}
	return p
}

func (e *testEnv) payment(transactionID string) *models.Payment {
	e.t.Helper()
	p, err := e.store.FindPaymentByTransactionID(e.ctx, transactionID)
	if err != nil {
		e.t.Fatalf("FindPaymentByTransactionID: %v", err)
	}
	return p
}

func (e *testEnv) hostRecord(id string) *models.Host {
	e.t.Helper()
	h, err := e.store.FindHostByID(e.ctx, id)
	if err != nil {
		e.t.Fatalf("FindHostByID: %v", err)
	}
	return h
}

// joinPaid joins a paid event and marks the gateway intent as succeeded.
func (e *testEnv) joinPaid(caller models.Caller, eventID string) (*JoinResult, *models.Payment) {
	e.t.Helper()
	res, err := e.enrollment.JoinEvent(e.ctx, caller, JoinEventRequest{EventID: eventID})
	if err != nil {
		e.t.Fatalf("JoinEvent: %v", err)
	}
	pay := e.payment(res.TransactionID)
	e.gateway.succeed(pay.GatewayRef)
	return res, pay
}

func (e *testEnv) countParticipants(eventID string) int64 {
	e.t.Helper()
	var n int64
	if err := e.store.DB().Model(&models.Participant{}).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
		e.t.Fatalf("count participants: %v", err)
	}
	return n
}

func (e *testEnv) countPayments(eventID string) int64 {
	e.t.Helper()
	var n int64
	if err := e.store.DB().Model(&models.Payment{}).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
		e.t.Fatalf("count payments: %v", err)
	}
	return n
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}
