// File: /models/payment.go
package models

import "time"

// Payment is one gateway payment attempt for an event enrollment.
type Payment struct {
	ID            string        `json:"id" gorm:"primaryKey;size:191"`
	TransactionID string        `json:"transaction_id" gorm:"uniqueIndex;not null;size:191"`
	UserID        string        `json:"user_id" gorm:"not null;size:191;index"`
	EventID       string        `json:"event_id" gorm:"not null;size:191;index"`
	Amount        float64       `json:"amount" gorm:"not null"`
	Currency      string        `json:"currency" gorm:"not null;size:10"`
	Status        PaymentStatus `json:"status" gorm:"not null;size:20;index"`
	Method        string        `json:"method" gorm:"not null;size:50"`
	GatewayRef    string        `json:"-" gorm:"size:191;index"`
	Metadata      StringMap     `json:"metadata" gorm:"type:json"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Event Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}
