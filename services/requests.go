package services

import (
	"strings"
	"time"
)

type JoinEventRequest struct {
	EventID string `json:"eventId" binding:"required"`
}

func (r JoinEventRequest) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return BadRequest("eventId is required")
	}
	return nil
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	TransactionID   string `json:"transactionId" binding:"required"`
}

func (r ConfirmPaymentRequest) Validate() error {
	if strings.TrimSpace(r.PaymentIntentID) == "" || strings.TrimSpace(r.TransactionID) == "" {
		return BadRequest("paymentIntentId and transactionId are required")
	}
	return nil
}

type CreateReviewRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (r CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(r.EventID) == "" {
		return BadRequest("eventId is required")
	}
	return nil
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (r UpdateReviewRequest) Validate() error {
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		return ErrInvalidRating
	}
	if r.Rating == nil && r.Comment == nil {
		return BadRequest("nothing to update")
	}
	return nil
}

type CreateEventRequest struct {
	Name            string    `json:"name" binding:"required,min=3"`
	Type            string    `json:"type" binding:"required"`
	Description     string    `json:"description" binding:"required,min=10"`
	EventDate       time.Time `json:"eventDate" binding:"required"`
	Location        string    `json:"location" binding:"required"`
	ImageURL        *string   `json:"imageUrl"`
	JoiningFee      float64   `json:"joiningFee"`
	Currency        string    `json:"currency"`
	MinParticipants int       `json:"minParticipants"`
	MaxParticipants int       `json:"maxParticipants" binding:"required"`
}

// Validate checks the payload against now; the event must start in the future.
func (r CreateEventRequest) Validate(now time.Time) error {
	if !r.EventDate.After(now) {
		return BadRequest("event date must be in the future")
	}
	if r.JoiningFee < 0 {
		return BadRequest("joining fee cannot be negative")
	}
	if r.MinParticipants < 0 {
		return BadRequest("minimum participants cannot be negative")
	}
	if r.MaxParticipants < 1 {
		return BadRequest("maximum participants must be at least 1")
	}
	if r.MinParticipants > r.MaxParticipants {
		return BadRequest("maximum participants must not be less than minimum participants")
	}
	return nil
}

type UpdateEventRequest struct {
	Name            *string    `json:"name"`
	Type            *string    `json:"type"`
	Description     *string    `json:"description"`
	EventDate       *time.Time `json:"eventDate"`
	Location        *string    `json:"location"`
	ImageURL        *string    `json:"imageUrl"`
	JoiningFee      *float64   `json:"joiningFee"`
	MinParticipants *int       `json:"minParticipants"`
	MaxParticipants *int       `json:"maxParticipants"`
}

func (r UpdateEventRequest) Validate(now time.Time) error {
	if r.EventDate != nil && !r.EventDate.After(now) {
		return BadRequest("event date must be in the future")
	}
	if r.JoiningFee != nil && *r.JoiningFee < 0 {
		return BadRequest("joining fee cannot be negative")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 1 {
		return BadRequest("maximum participants must be at least 1")
	}
	return nil
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CheckInRequest struct {
	Token string `json:"token" binding:"required"`
}
