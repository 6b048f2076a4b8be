package services

import (
	"bytes"
	"strings"
	"testing"

	"eventhub-api/models"
)

func TestTickets_IssueAndCheckIn(t *testing.T) {
	env := newTestEnv(t)
	owner, host := env.host("hana")
	alice := env.user("alice", models.RoleUser)
	ev := env.event(host)
	if _, err := env.enrollment.JoinEvent(env.ctx, alice, JoinEventRequest{EventID: ev.ID}); err != nil {
		t.Fatalf("JoinEvent: %v", err)
	}

	png, err := env.tickets.IssueTicket(env.ctx, alice, ev.ID)
	if err != nil {
		t.Fatalf("IssueTicket: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("ticket is not a PNG image")
	}

	token := env.tickets.TicketData(env.participant(alice.UserID, ev.ID))
	view, err := env.tickets.CheckIn(env.ctx, owner, ev.ID, CheckInRequest{Token: token})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if view.CheckedInAt == nil || !view.CheckedInAt.Equal(baseTime) {
		t.Errorf("checked in at %v, want %v", view.CheckedInAt, baseTime)
	}
	if p := env.participant(alice.UserID, ev.ID); p.CheckedInAt == nil {
		t.Error("check-in not persisted")
	}

	_, err = env.tickets.CheckIn(env.ctx, owner, ev.ID, CheckInRequest{Token: token})
	assertKind(t, err, KindBadRequest)
}

func TestTickets_Rejections(t *testing.T) {
	env := newTestEnv(t)
	owner, host := env.host("hana")
	other, _ := env.host("otto")
	alice := env.user("alice", models.RoleUser)
	bob := env.user("bob", models.RoleUser)

	paid := env.event(host, withFee(10))
	if _, err := env.enrollment.JoinEvent(env.ctx, bob, JoinEventRequest{EventID: paid.ID}); err != nil {
		t.Fatalf("JoinEvent: %v", err)
	}
	_, err := env.tickets.IssueTicket(env.ctx, bob, paid.ID)
	assertKind(t, err, KindBadRequest)

	ev := env.event(host)
	_, err = env.tickets.IssueTicket(env.ctx, alice, ev.ID)
	assertKind(t, err, KindNotFound)

	if _, err := env.enrollment.JoinEvent(env.ctx, alice, JoinEventRequest{EventID: ev.ID}); err != nil {
		t.Fatalf("JoinEvent: %v", err)
	}
	token := env.tickets.TicketData(env.participant(alice.UserID, ev.ID))

	_, err = env.tickets.CheckIn(env.ctx, alice, ev.ID, CheckInRequest{Token: token})
	assertKind(t, err, KindForbidden)
	_, err = env.tickets.CheckIn(env.ctx, other, ev.ID, CheckInRequest{Token: token})
	assertKind(t, err, KindForbidden)

	tampered := token[:strings.LastIndex(token, ":")+1] + strings.Repeat("0", 64)
	_, err = env.tickets.CheckIn(env.ctx, owner, ev.ID, CheckInRequest{Token: tampered})
	assertKind(t, err, KindBadRequest)

	_, err = env.tickets.CheckIn(env.ctx, owner, paid.ID, CheckInRequest{Token: token})
	assertKind(t, err, KindBadRequest)

	_, err = env.tickets.CheckIn(env.ctx, owner, ev.ID, CheckInRequest{Token: "garbage"})
	assertKind(t, err, KindBadRequest)

	if _, err := env.enrollment.LeaveEvent(env.ctx, alice, ev.ID); err != nil {
		t.Fatalf("LeaveEvent: %v", err)
	}
	_, err = env.tickets.CheckIn(env.ctx, owner, ev.ID, CheckInRequest{Token: token})
	assertKind(t, err, KindBadRequest)
}
