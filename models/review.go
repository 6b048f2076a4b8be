// File: /models/review.go
package models

import "time"

type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_reviews_user_event"`
	EventID   string    `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_reviews_user_event;index"`
	HostID    string    `json:"host_id" gorm:"not null;size:191;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Event Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}
