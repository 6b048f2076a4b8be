package repositories

import (
	"context"
	"time"

	"eventhub-api/models"

	"gorm.io/gorm/clause"
)

func (s *Store) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return s.conn(ctx).Omit(clause.Associations).Create(p).Error
}

// SaveParticipant writes every column of p, including nil pointers.
func (s *Store) SaveParticipant(ctx context.Context, p *models.Participant) error {
	return s.conn(ctx).Omit(clause.Associations).Save(p).Error
}

func (s *Store) FindParticipantByID(ctx context.Context, id string) (*models.Participant, error) {
	var p models.Participant
	if err := s.conn(ctx).Preload("User").First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindParticipant returns the (user, event) row in any status.
func (s *Store) FindParticipant(ctx context.Context, userID, eventID string) (*models.Participant, error) {
	var p models.Participant
	err := s.conn(ctx).Where("user_id = ? AND event_id = ?", userID, eventID).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// LockParticipant is FindParticipant with an exclusive row lock.
func (s *Store) LockParticipant(ctx context.Context, userID, eventID string) (*models.Participant, error) {
	var p models.Participant
	err := s.forUpdate(ctx).Where("user_id = ? AND event_id = ?", userID, eventID).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// CountSeatsHeld counts participants occupying capacity, unpaid reservations included.
func (s *Store) CountSeatsHeld(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Participant{}).
		Where("event_id = ? AND status = ?", eventID, models.ParticipantJoined).
		Count(&count).Error
	return count, err
}

// ExpiredReservations lists unpaid reservations whose hold ended at or before
// now. An empty eventID scans every event.
func (s *Store) ExpiredReservations(ctx context.Context, eventID string, now time.Time) ([]models.Participant, error) {
	q := s.conn(ctx).
		Where("status = ? AND payment_status = ?", models.ParticipantJoined, models.PaymentUnpaid).
		Where("reserved_until IS NOT NULL AND reserved_until <= ?", now)
	if eventID != "" {
		q = q.Where("event_id = ?", eventID)
	}
	var out []models.Participant
	err := q.Order("reserved_until ASC").Find(&out).Error
	return out, err
}

// JoinedEventsForUser returns the user's active enrollments with their events.
func (s *Store) JoinedEventsForUser(ctx context.Context, userID string) ([]models.Participant, error) {
	var out []models.Participant
	err := s.conn(ctx).
		Preload("Event").
		Preload("Event.Host").
		Where("user_id = ? AND status = ?", userID, models.ParticipantJoined).
		Order("joined_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Store) ParticipantsForEvent(ctx context.Context, eventID string) ([]models.Participant, error) {
	var out []models.Participant
	err := s.conn(ctx).
		Preload("User").
		Where("event_id = ? AND status = ?", eventID, models.ParticipantJoined).
		Order("joined_at ASC").
		Find(&out).Error
	return out, err
}

// MarkCheckedIn stamps the check-in time once; a second call affects no row.
func (s *Store) MarkCheckedIn(ctx context.Context, participantID string, at time.Time) (bool, error) {
	res := s.conn(ctx).Model(&models.Participant{}).
		Where("id = ? AND checked_in_at IS NULL", participantID).
		Update("checked_in_at", at)
	return res.RowsAffected == 1, res.Error
}
