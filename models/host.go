// File: /models/host.go
package models

import "time"

// Host holds the public profile of a user that runs events. The statistic
// columns are derived from events, payments and reviews and are only written
// by the host stats aggregator.
type Host struct {
	ID                string    `json:"id" gorm:"primaryKey;size:191"`
	UserID            string    `json:"user_id" gorm:"uniqueIndex;not null;size:191"`
	Name              string    `json:"name" gorm:"not null;size:255"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Bio               string    `json:"bio" gorm:"type:text"`
	ProfileImage      *string   `json:"profile_image" gorm:"size:500"`
	TotalEventsHosted int       `json:"total_events_hosted" gorm:"default:0"`
	TotalRevenue      float64   `json:"total_revenue" gorm:"default:0"`
	AverageRating     float64   `json:"average_rating" gorm:"default:0"`
	TotalRatings      int       `json:"total_ratings" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// HostStats is returned by the host dashboard endpoint.
type HostStats struct {
	TotalEventsHosted int     `json:"total_events_hosted"`
	UpcomingEvents    int64   `json:"upcoming_events"`
	CompletedEvents   int64   `json:"completed_events"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageRating     float64 `json:"average_rating"`
	TotalRatings      int     `json:"total_ratings"`
}
