// File: /services/enrollment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/google/uuid"
)

const paymentMethodCard = "card"

// EnrollmentService owns the participant lifecycle: joining, leaving and
// releasing unpaid reservations. Every capacity change runs in a transaction
// holding the event row lock.
type EnrollmentService struct {
	store          *repositories.Store
	gateway        Gateway
	notifier       Notifier
	stats          HostStats
	currency       string
	reservationTTL time.Duration
	now            func() time.Time
}

func NewEnrollmentService(store *repositories.Store, gateway Gateway, notifier Notifier, currency string, reservationTTL time.Duration) *EnrollmentService {
	return &EnrollmentService{
		store:          store,
		gateway:        gateway,
		notifier:       notifier,
		currency:       currency,
		reservationTTL: reservationTTL,
		now:            utcNow,
	}
}

type JoinResult struct {
	Participant     *models.Participant `json:"participant"`
	Event           models.EventSummary `json:"event"`
	RequiresPayment bool                `json:"requiresPayment"`
	ClientSecret    string              `json:"clientSecret,omitempty"`
	TransactionID   string              `json:"transactionId,omitempty"`
	Amount          float64             `json:"amount"`
	Currency        string              `json:"currency,omitempty"`
	ReservedUntil   *time.Time          `json:"reservedUntil,omitempty"`
}

type LeaveResult struct {
	Event          models.EventSummary `json:"event"`
	RefundedAmount float64             `json:"refundedAmount"`
}

// ParticipantView is a participant as shown to the event's host.
type ParticipantView struct {
	ID            string                   `json:"id"`
	User          models.UserSummary       `json:"user"`
	Status        models.ParticipantStatus `json:"status"`
	PaymentStatus models.PaymentStatus     `json:"paymentStatus"`
	PaidAmount    *float64                 `json:"paidAmount"`
	JoinedAt      time.Time                `json:"joinedAt"`
	CheckedInAt   *time.Time               `json:"checkedInAt"`
}

// JoinEvent reserves a seat for the caller. Free events complete the
// enrollment at once; paid events leave an UNPAID reservation and return the
// gateway client secret needed to pay.
func (s *EnrollmentService) JoinEvent(ctx context.Context, caller models.Caller, req JoinEventRequest) (*JoinResult, error) {
	if err := Authorize(caller, ActionJoinEvent); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "load user")
	}

	now := s.now()
	var (
		event       *models.Event
		participant *models.Participant
		payment     *models.Payment
	)

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ev, err := tx.LockEventByID(ctx, req.EventID)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		if _, err := releaseExpired(ctx, tx, ev, now); err != nil {
			return err
		}

		seats, err := tx.CountSeatsHeld(ctx, ev.ID)
		if err != nil {
			return Internal("count seats", err)
		}
		if ev.Status == models.EventStatusFull || seats >= int64(ev.MaxParticipants) {
			return ErrEventFull
		}
		if ev.Status != models.EventStatusOpen {
			return ErrEventNotOpen
		}
		if ev.HasStarted(now) {
			return ErrEventStarted
		}

		existing, err := tx.LockParticipant(ctx, user.ID, ev.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return Internal("load participant", err)
		}
		if existing != nil && existing.Status == models.ParticipantJoined {
			return ErrAlreadyJoined
		}

		p := existing
		if p == nil {
			p = &models.Participant{ID: uuid.New().String(), UserID: user.ID, EventID: ev.ID}
		}
		p.Status = models.ParticipantJoined
		p.JoinedAt = now
		p.CheckedInAt = nil

		if ev.IsPaid() {
			reservedUntil := now.Add(s.reservationTTL)
			p.PaymentStatus = models.PaymentUnpaid
			p.PaidAmount = nil
			p.PaymentDate = nil
			p.ReservedUntil = &reservedUntil
		} else {
			zero := 0.0
			paidAt := now
			p.PaymentStatus = models.PaymentPaid
			p.PaidAmount = &zero
			p.PaymentDate = &paidAt
			p.ReservedUntil = nil
		}

		if existing == nil {
			err = tx.CreateParticipant(ctx, p)
		} else {
			err = tx.SaveParticipant(ctx, p)
		}
		if err != nil {
			return Internal("save participant", err)
		}

		if ev.IsPaid() {
			txnID := newTransactionID(now)
			payment = &models.Payment{
				ID:            uuid.New().String(),
				TransactionID: txnID,
				UserID:        user.ID,
				EventID:       ev.ID,
				Amount:        ev.JoiningFee,
				Currency:      s.currencyFor(ev),
				Status:        models.PaymentUnpaid,
				Method:        paymentMethodCard,
				Metadata: models.StringMap{
					"userId":        user.ID,
					"eventId":       ev.ID,
					"transactionId": txnID,
					"eventName":     ev.Name,
					"userName":      user.Name,
				},
			}
			if err := tx.CreatePayment(ctx, payment); err != nil {
				return Internal("create payment", err)
			}
		}

		if err := syncEventCapacity(ctx, tx, ev); err != nil {
			return err
		}
		event, participant = ev, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &JoinResult{
		Participant: participant,
		Event:       event.Summary(),
	}

	if payment == nil {
		s.notify(func(n Notifier) error {
			return n.SendEnrollmentEmail(user.Email, user.Name, mailInfo(event))
		})
		return result, nil
	}

	intent, err := s.gateway.CreateIntent(ctx, minorUnits(payment.Amount), payment.Currency, payment.Metadata)
	if err == nil {
		err = s.store.UpdatePayment(ctx, payment.ID, map[string]interface{}{"gateway_ref": intent.ID})
	}
	if err != nil {
		if relErr := s.releaseAfterGatewayFailure(ctx, participant); relErr != nil {
			log.Printf("Failed to release reservation %s after gateway error: %v", participant.ID, relErr)
		}
		return nil, Internal("failed to create payment intent", err)
	}

	result.RequiresPayment = true
	result.ClientSecret = intent.ClientSecret
	result.TransactionID = payment.TransactionID
	result.Amount = payment.Amount
	result.Currency = payment.Currency
	result.ReservedUntil = participant.ReservedUntil
	return result, nil
}

func (s *EnrollmentService) releaseAfterGatewayFailure(ctx context.Context, p *models.Participant) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ev, err := tx.LockEventByID(ctx, p.EventID)
		if err != nil {
			return err
		}
		locked, err := tx.LockParticipant(ctx, p.UserID, p.EventID)
		if err != nil {
			return err
		}
		if locked.Status != models.ParticipantJoined || locked.PaymentStatus != models.PaymentUnpaid {
			return nil
		}
		if err := releaseReservation(ctx, tx, locked); err != nil {
			return err
		}
		return syncEventCapacity(ctx, tx, ev)
	})
}

// LeaveEvent removes the caller from an event before it starts. A paid seat
// is refunded while the participant row is locked, so at most one refund is
// issued per enrollment.
func (s *EnrollmentService) LeaveEvent(ctx context.Context, caller models.Caller, eventID string) (*LeaveResult, error) {
	if err := Authorize(caller, ActionLeaveEvent); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "load user")
	}

	current, err := s.store.FindParticipant(ctx, user.ID, eventID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, Internal("load participant", err)
	}
	if current == nil || current.Status != models.ParticipantJoined {
		return nil, ErrParticipantNotFound
	}

	now := s.now()
	var (
		event    *models.Event
		refunded float64
	)

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ev, err := tx.LockEventByID(ctx, eventID)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		if ev.HasStarted(now) {
			return ErrLeaveAfterStart
		}

		p, err := tx.LockParticipant(ctx, user.ID, eventID)
		if err != nil {
			return lookupErr(err, ErrParticipantNotFound, "lock participant")
		}
		if p.Status != models.ParticipantJoined {
			return ErrParticipantNotFound
		}

		switch {
		case p.PaymentStatus == models.PaymentPaid && p.PaidAmount != nil && *p.PaidAmount > 0:
			payment, err := tx.LatestPayment(ctx, user.ID, eventID, models.PaymentPaid)
			if err != nil {
				return Internal("load payment for refund", err)
			}
			intent, err := s.gateway.RetrieveIntent(ctx, payment.GatewayRef)
			if err != nil {
				return Internal("failed to retrieve payment", err)
			}
			if intent.ChargeID == "" {
				return Internal("failed to refund payment", fmt.Errorf("intent %s has no charge", intent.ID))
			}
			if err := s.gateway.Refund(ctx, intent.ChargeID, minorUnits(*p.PaidAmount), refundKey(payment)); err != nil {
				return Internal("failed to refund payment", err)
			}
			if err := tx.UpdatePayment(ctx, payment.ID, map[string]interface{}{"status": models.PaymentRefunded}); err != nil {
				return Internal("update payment", err)
			}
			refunded = *p.PaidAmount

		case p.PaymentStatus == models.PaymentUnpaid:
			if err := failPendingPayment(ctx, tx, user.ID, eventID); err != nil {
				return err
			}
		}

		p.Status = models.ParticipantLeft
		p.PaymentStatus = models.PaymentRefunded
		p.ReservedUntil = nil
		if err := tx.SaveParticipant(ctx, p); err != nil {
			return Internal("save participant", err)
		}

		if err := syncEventCapacity(ctx, tx, ev); err != nil {
			return err
		}
		if err := s.stats.RecomputeHostRevenue(ctx, tx, ev.HostID); err != nil {
			return Internal("recompute host revenue", err)
		}
		event = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refunded > 0 {
		s.notify(func(n Notifier) error {
			return n.SendRefundEmail(user.Email, user.Name, mailInfo(event), refunded)
		})
	}

	return &LeaveResult{Event: event.Summary(), RefundedAmount: refunded}, nil
}

// MyJoinedEvents lists the caller's active enrollments.
func (s *EnrollmentService) MyJoinedEvents(ctx context.Context, caller models.Caller) ([]models.Participant, error) {
	if caller.UserID == "" {
		return nil, Unauthorized("authentication required")
	}
	out, err := s.store.JoinedEventsForUser(ctx, caller.UserID)
	if err != nil {
		return nil, Internal("load joined events", err)
	}
	return out, nil
}

// EventParticipants lists an event's active participants for its host or an admin.
func (s *EnrollmentService) EventParticipants(ctx context.Context, caller models.Caller, eventID string) ([]ParticipantView, error) {
	if err := Authorize(caller, ActionViewParticipants); err != nil {
		return nil, err
	}

	event, err := s.store.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}
	if caller.Role != models.RoleAdmin && event.Host.UserID != caller.UserID {
		return nil, ErrNotEventOwner
	}

	participants, err := s.store.ParticipantsForEvent(ctx, eventID)
	if err != nil {
		return nil, Internal("load participants", err)
	}

	views := make([]ParticipantView, 0, len(participants))
	for _, p := range participants {
		views = append(views, ParticipantView{
			ID:            p.ID,
			User:          p.User.Summary(),
			Status:        p.Status,
			PaymentStatus: p.PaymentStatus,
			PaidAmount:    p.PaidAmount,
			JoinedAt:      p.JoinedAt,
			CheckedInAt:   p.CheckedInAt,
		})
	}
	return views, nil
}

// ExpireReservations releases every unpaid reservation whose hold has ended
// and returns how many were released.
func (s *EnrollmentService) ExpireReservations(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.store.ExpiredReservations(ctx, "", now)
	if err != nil {
		return 0, fmt.Errorf("list expired reservations: %w", err)
	}

	seen := make(map[string]bool)
	released := 0
	for _, p := range expired {
		if seen[p.EventID] {
			continue
		}
		seen[p.EventID] = true

		err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
			ev, err := tx.LockEventByID(ctx, p.EventID)
			if err != nil {
				return err
			}
			n, err := releaseExpired(ctx, tx, ev, now)
			if err != nil {
				return err
			}
			released += n
			return nil
		})
		if err != nil {
			return released, fmt.Errorf("release reservations for event %s: %w", p.EventID, err)
		}
	}
	return released, nil
}

func (s *EnrollmentService) currencyFor(ev *models.Event) string {
	if ev.Currency != "" {
		return strings.ToLower(ev.Currency)
	}
	return s.currency
}

func (s *EnrollmentService) notify(send func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := send(s.notifier); err != nil {
			log.Printf("Failed to send notification: %v", err)
		}
	}()
}

// syncEventCapacity recounts held seats, caches the count on the event and
// flips OPEN and FULL as capacity is reached or freed. CANCELLED and
// COMPLETED are left untouched.
func syncEventCapacity(ctx context.Context, tx *repositories.Store, ev *models.Event) error {
	seats, err := tx.CountSeatsHeld(ctx, ev.ID)
	if err != nil {
		return Internal("count seats", err)
	}

	status := ev.Status
	switch {
	case status == models.EventStatusOpen && seats >= int64(ev.MaxParticipants):
		status = models.EventStatusFull
	case status == models.EventStatusFull && seats < int64(ev.MaxParticipants):
		status = models.EventStatusOpen
	}

	if err := tx.SetEventCapacity(ctx, ev.ID, int(seats), status); err != nil {
		return Internal("update event capacity", err)
	}
	ev.ParticipantsCount = int(seats)
	ev.Status = status
	return nil
}

// releaseReservation gives an unpaid seat back: the participant leaves with
// a FAILED payment status and the pending payment is marked FAILED.
func releaseReservation(ctx context.Context, tx *repositories.Store, p *models.Participant) error {
	p.Status = models.ParticipantLeft
	p.PaymentStatus = models.PaymentFailed
	p.ReservedUntil = nil
	if err := tx.SaveParticipant(ctx, p); err != nil {
		return Internal("release reservation", err)
	}
	return failPendingPayment(ctx, tx, p.UserID, p.EventID)
}

func failPendingPayment(ctx context.Context, tx *repositories.Store, userID, eventID string) error {
	payment, err := tx.LatestPayment(ctx, userID, eventID, models.PaymentUnpaid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return Internal("load pending payment", err)
	}
	if err := tx.UpdatePayment(ctx, payment.ID, map[string]interface{}{"status": models.PaymentFailed}); err != nil {
		return Internal("fail pending payment", err)
	}
	return nil
}

// releaseExpired releases lapsed reservations of the locked event and
// returns how many were released.
func releaseExpired(ctx context.Context, tx *repositories.Store, ev *models.Event, now time.Time) (int, error) {
	expired, err := tx.ExpiredReservations(ctx, ev.ID, now)
	if err != nil {
		return 0, Internal("load expired reservations", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}
	for i := range expired {
		if err := releaseReservation(ctx, tx, &expired[i]); err != nil {
			return 0, err
		}
	}
	log.Printf("Released %d expired reservation(s) for event %s", len(expired), ev.ID)
	return len(expired), syncEventCapacity(ctx, tx, ev)
}

func newTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// lookupErr maps a missing record to notFound and anything else to an internal error.
func lookupErr(err error, notFound *AppError, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(op, err)
}
