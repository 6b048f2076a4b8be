// File: /services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

// PaymentService reconciles gateway payments with enrollments, either from
// an explicit client confirmation or from a gateway webhook.
type PaymentService struct {
	store    *repositories.Store
	gateway  Gateway
	notifier Notifier
	stats    HostStats
	now      func() time.Time
}

func NewPaymentService(store *repositories.Store, gateway Gateway, notifier Notifier) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		now:      utcNow,
	}
}

type ConfirmResult struct {
	TransactionID string               `json:"transactionId"`
	Amount        float64              `json:"amount"`
	Currency      string               `json:"currency"`
	Status        models.PaymentStatus `json:"status"`
	Participant   *models.Participant  `json:"participant"`
	Event         models.EventSummary  `json:"event"`
}

// ConfirmPayment settles the caller's pending payment once the gateway
// reports the intent as succeeded.
func (s *PaymentService) ConfirmPayment(ctx context.Context, caller models.Caller, req ConfirmPaymentRequest) (*ConfirmResult, error) {
	if err := Authorize(caller, ActionConfirmPayment); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "load user")
	}
	return s.confirm(ctx, user, req.TransactionID, req.PaymentIntentID)
}

func (s *PaymentService) confirm(ctx context.Context, user *models.User, transactionID, intentID string) (*ConfirmResult, error) {
	payment, err := s.store.FindPaymentByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, lookupErr(err, ErrPaymentNotFound, "load payment")
	}
	if payment.UserID != user.ID {
		return nil, ErrNotPaymentOwner
	}
	if err := checkConfirmable(payment); err != nil {
		return nil, err
	}
	if payment.GatewayRef == "" || payment.GatewayRef != intentID {
		return nil, ErrIntentMismatch
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, Internal("failed to retrieve payment", err)
	}
	if intent.Status != IntentSucceeded {
		return nil, ErrPaymentIncomplete
	}

	now := s.now()
	var (
		event       *models.Event
		participant *models.Participant
		refusal     error
	)

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		// Lock order is event, payment, participant everywhere.
		ev, err := tx.LockEventByID(ctx, payment.EventID)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		pay, err := tx.LockPaymentByTransactionID(ctx, transactionID)
		if err != nil {
			return lookupErr(err, ErrPaymentNotFound, "lock payment")
		}
		if err := checkConfirmable(pay); err != nil {
			return err
		}
		p, err := tx.LockParticipant(ctx, pay.UserID, pay.EventID)
		if err != nil {
			return lookupErr(err, ErrParticipantNotFound, "lock participant")
		}
		current, err := isLatestAttempt(ctx, tx, pay)
		if err != nil {
			return err
		}

		switch {
		case !current:
			refusal = ErrPaymentSuperseded
		case p.Status == models.ParticipantJoined:
			if p.PaymentStatus != models.PaymentUnpaid || pay.Status != models.PaymentUnpaid {
				refusal = ErrPaymentSuperseded
			}
		case p.PaymentStatus == models.PaymentFailed:
			// The hold lapsed before the payment landed; take the seat back if one is free.
			admit, err := canReadmit(ctx, tx, ev, now)
			if err != nil {
				return err
			}
			if !admit {
				refusal = ErrReservationExpired
				break
			}
			p.Status = models.ParticipantJoined
			p.JoinedAt = now
		default:
			refusal = ErrEnrollmentLeft
		}

		if refusal != nil {
			return s.refundUnsettled(ctx, tx, pay, intent)
		}

		if err := tx.UpdatePayment(ctx, pay.ID, map[string]interface{}{"status": models.PaymentPaid}); err != nil {
			return Internal("update payment", err)
		}

		amount := pay.Amount
		paidAt := now
		p.PaymentStatus = models.PaymentPaid
		p.PaidAmount = &amount
		p.PaymentDate = &paidAt
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
		event, participant = ev, p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		log.Printf("Payment %s refunded instead of settled: %v", transactionID, refusal)
		return nil, refusal
	}

	if s.notifier != nil {
		go func() {
			if err := s.notifier.SendPaymentReceiptEmail(user.Email, user.Name, mailInfo(event), payment.TransactionID, payment.Amount); err != nil {
				log.Printf("Failed to send payment receipt for %s: %v", payment.TransactionID, err)
			}
		}()
	}

	return &ConfirmResult{
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Status:        models.PaymentPaid,
		Participant:   participant,
		Event:         event.Summary(),
	}, nil
}

// MyPayments lists every payment attempt of the caller, newest first.
func (s *PaymentService) MyPayments(ctx context.Context, caller models.Caller) ([]models.Payment, error) {
	if caller.UserID == "" {
		return nil, Unauthorized("authentication required")
	}
	out, err := s.store.PaymentsForUser(ctx, caller.UserID)
	if err != nil {
		return nil, Internal("load payments", err)
	}
	return out, nil
}

// HandleWebhook applies a signed gateway notification. Unknown payments and
// repeated deliveries are acknowledged without changes.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return SignatureError(err)
	}

	switch evt.Type {
	case WebhookPaymentSucceeded:
		return s.handleIntentSucceeded(ctx, evt)
	case WebhookPaymentFailed:
		return s.handleIntentFailed(ctx, evt)
	default:
		log.Printf("Ignoring webhook event type %s", evt.Type)
		return nil
	}
}

func (s *PaymentService) handleIntentSucceeded(ctx context.Context, evt *WebhookEvent) error {
	payment, err := s.webhookPayment(ctx, evt)
	if err != nil || payment == nil {
		return err
	}
	if payment.Status == models.PaymentPaid || payment.Status == models.PaymentRefunded {
		log.Printf("Webhook for %s already applied (status %s)", payment.TransactionID, payment.Status)
		return nil
	}

	owner, err := s.store.FindUserByID(ctx, payment.UserID)
	if err != nil {
		return lookupErr(err, ErrUserNotFound, "load payment owner")
	}

	_, err = s.confirm(ctx, owner, payment.TransactionID, evt.IntentID)
	switch {
	case err == nil:
		log.Printf("Payment %s confirmed by webhook", payment.TransactionID)
		return nil
	case errors.Is(err, ErrPaymentConfirmed), errors.Is(err, ErrReservationExpired),
		errors.Is(err, ErrPaymentSuperseded), errors.Is(err, ErrEnrollmentLeft):
		return nil
	default:
		return err
	}
}

func (s *PaymentService) handleIntentFailed(ctx context.Context, evt *WebhookEvent) error {
	payment, err := s.webhookPayment(ctx, evt)
	if err != nil || payment == nil {
		return err
	}
	if payment.Status != models.PaymentUnpaid {
		return nil
	}

	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ev, err := tx.LockEventByID(ctx, payment.EventID)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		pay, err := tx.LockPaymentByTransactionID(ctx, payment.TransactionID)
		if err != nil {
			return Internal("lock payment", err)
		}
		if pay.Status != models.PaymentUnpaid {
			return nil
		}
		p, err := tx.LockParticipant(ctx, pay.UserID, pay.EventID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return Internal("lock participant", err)
		}
		if p != nil && p.Status == models.ParticipantJoined && p.PaymentStatus == models.PaymentUnpaid {
			if err := releaseReservation(ctx, tx, p); err != nil {
				return err
			}
		} else if err := tx.UpdatePayment(ctx, pay.ID, map[string]interface{}{"status": models.PaymentFailed}); err != nil {
			return Internal("update payment", err)
		}
		log.Printf("Payment %s failed at the gateway, reservation released", pay.TransactionID)
		return syncEventCapacity(ctx, tx, ev)
	})
}

// webhookPayment finds the payment an event refers to, by transaction id
// from the intent metadata or by the intent id. A nil payment means the
// event is not ours.
func (s *PaymentService) webhookPayment(ctx context.Context, evt *WebhookEvent) (*models.Payment, error) {
	var (
		payment *models.Payment
		err     error
	)
	if evt.TransactionID != "" {
		payment, err = s.store.FindPaymentByTransactionID(ctx, evt.TransactionID)
	} else {
		payment, err = s.store.FindPaymentByGatewayRef(ctx, evt.IntentID)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Webhook %s for unknown payment (intent %s)", evt.Type, evt.IntentID)
		return nil, nil
	}
	if err != nil {
		return nil, Internal("load payment", err)
	}
	return payment, nil
}

func checkConfirmable(p *models.Payment) error {
	switch p.Status {
	case models.PaymentPaid:
		return ErrPaymentConfirmed
	case models.PaymentRefunded:
		return BadRequest("payment has been refunded")
	}
	return nil
}

// refundUnsettled returns a succeeded payment that cannot be applied to the
// enrollment and marks it REFUNDED.
func (s *PaymentService) refundUnsettled(ctx context.Context, tx *repositories.Store, pay *models.Payment, intent *Intent) error {
	if intent.ChargeID == "" {
		return Internal("failed to refund payment", fmt.Errorf("intent %s has no charge", intent.ID))
	}
	if err := s.gateway.Refund(ctx, intent.ChargeID, minorUnits(pay.Amount), refundKey(pay)); err != nil {
		return Internal("failed to refund payment", err)
	}
	if err := tx.UpdatePayment(ctx, pay.ID, map[string]interface{}{"status": models.PaymentRefunded}); err != nil {
		return Internal("update payment", err)
	}
	return nil
}

// isLatestAttempt reports whether pay is the newest payment of its user for
// the event. Only the newest attempt may settle an enrollment.
func isLatestAttempt(ctx context.Context, tx *repositories.Store, pay *models.Payment) (bool, error) {
	latest, err := tx.LatestPayment(ctx, pay.UserID, pay.EventID)
	if err != nil {
		return false, Internal("load latest payment", err)
	}
	return latest.ID == pay.ID, nil
}

func refundKey(pay *models.Payment) string {
	return "refund-" + pay.ID
}

func canReadmit(ctx context.Context, tx *repositories.Store, ev *models.Event, now time.Time) (bool, error) {
	if ev.Status != models.EventStatusOpen && ev.Status != models.EventStatusFull {
		return false, nil
	}
	if ev.HasStarted(now) {
		return false, nil
	}
	seats, err := tx.CountSeatsHeld(ctx, ev.ID)
	if err != nil {
		return false, Internal("count seats", err)
	}
	return seats < int64(ev.MaxParticipants), nil
}
