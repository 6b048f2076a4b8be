// File: /models/event.go
package models

import (
	"time"
)

type EventStatus string

const (
	EventStatusOpen      EventStatus = "OPEN"
	EventStatusFull      EventStatus = "FULL"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusOpen, EventStatusFull, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

type Event struct {
	ID                string      `json:"id" gorm:"primaryKey;size:191"`
	HostID            string      `json:"host_id" gorm:"not null;size:191;index"`
	Name              string      `json:"name" gorm:"not null;size:255"`
	Type              string      `json:"type" gorm:"not null;size:100"`
	Description       string      `json:"description" gorm:"not null;type:text"`
	EventDate         time.Time   `json:"event_date" gorm:"not null;index"`
	Location          string      `json:"location" gorm:"not null;size:255"`
	ImageURL          *string     `json:"image_url" gorm:"size:500"`
	JoiningFee        float64     `json:"joining_fee" gorm:"not null;default:0"`
	Currency          string      `json:"currency" gorm:"not null;size:10;default:'USD'"`
	MinParticipants   int         `json:"min_participants" gorm:"not null;default:2"`
	MaxParticipants   int         `json:"max_participants" gorm:"not null"`
	ParticipantsCount int         `json:"participants_count" gorm:"default:0"`
	Status            EventStatus `json:"status" gorm:"not null;size:20;default:'OPEN';index"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Host Host `json:"host,omitempty" gorm:"foreignKey:HostID"`
}

// HasStarted reports whether the scheduled start is behind now.
func (e *Event) HasStarted(now time.Time) bool {
	return e.EventDate.Before(now)
}

// IsPaid reports whether joining requires a gateway payment.
func (e *Event) IsPaid() bool {
	return e.JoiningFee > 0
}

// EventSummary is the slice of an event returned with enrollment results.
type EventSummary struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	EventDate         time.Time   `json:"event_date"`
	Location          string      `json:"location"`
	MaxParticipants   int         `json:"max_participants"`
	ParticipantsCount int         `json:"participants_count"`
	Status            EventStatus `json:"status"`
}

func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:                e.ID,
		Name:              e.Name,
		EventDate:         e.EventDate,
		Location:          e.Location,
		MaxParticipants:   e.MaxParticipants,
		ParticipantsCount: e.ParticipantsCount,
		Status:            e.Status,
	}
}
