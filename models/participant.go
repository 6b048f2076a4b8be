// File: /models/participant.go
package models

import (
	"time"
)

type ParticipantStatus string

const (
	ParticipantJoined ParticipantStatus = "JOINED"
	ParticipantLeft   ParticipantStatus = "LEFT"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Participant links one user to one event. Rows are never deleted; leaving
// or an expired reservation moves the row to LEFT.
type Participant struct {
	ID            string            `json:"id" gorm:"primaryKey;size:191"`
	UserID        string            `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_participants_user_event"`
	EventID       string            `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_participants_user_event;index"`
	Status        ParticipantStatus `json:"status" gorm:"not null;size:20"`
	PaymentStatus PaymentStatus     `json:"payment_status" gorm:"not null;size:20"`
	PaidAmount    *float64          `json:"paid_amount"`
	PaymentDate   *time.Time        `json:"payment_date"`
	ReservedUntil *time.Time        `json:"reserved_until" gorm:"index"`
	CheckedInAt   *time.Time        `json:"checked_in_at"`
	JoinedAt      time.Time         `json:"joined_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Event Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}

// HoldsSeat reports whether the participant occupies capacity.
func (p *Participant) HoldsSeat() bool {
	return p.Status == ParticipantJoined
}

// ReservationExpired reports whether an unpaid reservation has lapsed.
func (p *Participant) ReservationExpired(now time.Time) bool {
	return p.Status == ParticipantJoined &&
		p.PaymentStatus == PaymentUnpaid &&
		p.ReservedUntil != nil &&
		!p.ReservedUntil.After(now)
}
