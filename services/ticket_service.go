// File: /services/ticket_service.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/skip2/go-qrcode"
)

const ticketQRSize = 256

// TicketService issues signed check-in QR codes to settled participants and
// verifies them at the door.
type TicketService struct {
	store  *repositories.Store
	secret string
	now    func() time.Time
}

func NewTicketService(store *repositories.Store, secret string) *TicketService {
	return &TicketService{store: store, secret: secret, now: utcNow}
}

// IssueTicket renders the caller's ticket for an event as a PNG QR code.
func (s *TicketService) IssueTicket(ctx context.Context, caller models.Caller, eventID string) ([]byte, error) {
	if caller.UserID == "" {
		return nil, Unauthorized("authentication required")
	}
	p, err := s.store.FindParticipant(ctx, caller.UserID, eventID)
	if err != nil {
		return nil, lookupErr(err, ErrParticipantNotFound, "load participant")
	}
	if p.Status != models.ParticipantJoined {
		return nil, ErrParticipantNotFound
	}
	if p.PaymentStatus != models.PaymentPaid {
		return nil, BadRequest("ticket is available once payment is complete")
	}

	png, err := qrcode.Encode(s.TicketData(p), qrcode.Medium, ticketQRSize)
	if err != nil {
		return nil, Internal("failed to generate QR code", err)
	}
	return png, nil
}

// TicketData is the text encoded in a participant's QR code.
func (s *TicketService) TicketData(p *models.Participant) string {
	return fmt.Sprintf("participant:%s;event:%s;signature:%s", p.ID, p.EventID, s.sign(p))
}

// CheckIn validates a scanned ticket for the host's event and stamps the
// participant as arrived. A ticket can be used once.
func (s *TicketService) CheckIn(ctx context.Context, caller models.Caller, eventID string, req CheckInRequest) (*ParticipantView, error) {
	if err := Authorize(caller, ActionCheckIn); err != nil {
		return nil, err
	}

	participantID, ticketEventID, signature, err := parseTicket(req.Token)
	if err != nil || ticketEventID != eventID {
		return nil, BadRequest("invalid ticket")
	}

	event, err := s.store.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}
	if caller.Role != models.RoleAdmin && event.Host.UserID != caller.UserID {
		return nil, ErrNotEventOwner
	}

	p, err := s.store.FindParticipantByID(ctx, participantID)
	if err != nil {
		return nil, lookupErr(err, BadRequest("invalid ticket"), "load participant")
	}
	expected, _ := hex.DecodeString(s.sign(p))
	given, err := hex.DecodeString(signature)
	if err != nil || p.EventID != eventID || !hmac.Equal(expected, given) {
		return nil, BadRequest("invalid ticket")
	}
	if p.Status != models.ParticipantJoined || p.PaymentStatus != models.PaymentPaid {
		return nil, BadRequest("ticket is no longer valid")
	}

	now := s.now()
	marked, err := s.store.MarkCheckedIn(ctx, p.ID, now)
	if err != nil {
		return nil, Internal("check in participant", err)
	}
	if !marked {
		return nil, BadRequest("ticket already used")
	}

	return &ParticipantView{
		ID:            p.ID,
		User:          p.User.Summary(),
		Status:        p.Status,
		PaymentStatus: p.PaymentStatus,
		PaidAmount:    p.PaidAmount,
		JoinedAt:      p.JoinedAt,
		CheckedInAt:   &now,
	}, nil
}

func (s *TicketService) sign(p *models.Participant) string {
	data := fmt.Sprintf("%s:%s:%s", p.ID, p.EventID, p.UserID)
	h := hmac.New(sha256.New, []byte(s.secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func parseTicket(data string) (participantID, eventID, signature string, err error) {
	parts := strings.Split(data, ";")
	if len(parts) != 3 ||
		!strings.HasPrefix(parts[0], "participant:") ||
		!strings.HasPrefix(parts[1], "event:") ||
		!strings.HasPrefix(parts[2], "signature:") {
		return "", "", "", fmt.Errorf("invalid ticket format")
	}
	return strings.TrimPrefix(parts[0], "participant:"),
		strings.TrimPrefix(parts[1], "event:"),
		strings.TrimPrefix(parts[2], "signature:"),
		nil
}
