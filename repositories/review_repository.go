package repositories

import (
	"context"

	"eventhub-api/models"

	"gorm.io/gorm/clause"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return s.conn(ctx).Omit(clause.Associations).Create(r).Error
}

func (s *Store) FindReviewByID(ctx context.Context, id string) (*models.Review, error) {
	var r models.Review
	err := s.conn(ctx).Preload("User").Preload("Event").First(&r, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) ReviewExists(ctx context.Context, userID, eventID string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Review{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) UpdateReview(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	return s.conn(ctx).Delete(&models.Review{}, "id = ?", id).Error
}

func (s *Store) listReviews(ctx context.Context, column, value string) ([]models.Review, error) {
	var out []models.Review
	err := s.conn(ctx).
		Preload("User").
		Preload("Event").
		Where(column+" = ?", value).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Store) ReviewsForHost(ctx context.Context, hostID string) ([]models.Review, error) {
	return s.listReviews(ctx, "host_id", hostID)
}

func (s *Store) ReviewsForEvent(ctx context.Context, eventID string) ([]models.Review, error) {
	return s.listReviews(ctx, "event_id", eventID)
}

func (s *Store) ReviewsByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.listReviews(ctx, "user_id", userID)
}
