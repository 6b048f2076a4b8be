package repositories

import (
	"context"

	"eventhub-api/models"

	"gorm.io/gorm/clause"
)

func (s *Store) CreateHost(ctx context.Context, host *models.Host) error {
	return s.conn(ctx).Omit(clause.Associations).Create(host).Error
}

func (s *Store) FindHostByID(ctx context.Context, id string) (*models.Host, error) {
	var host models.Host
	if err := s.conn(ctx).First(&host, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &host, nil
}

func (s *Store) FindHostByUserID(ctx context.Context, userID string) (*models.Host, error) {
	var host models.Host
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&host).Error; err != nil {
		return nil, notFound(err)
	}
	return &host, nil
}

// UpdateHostStats writes derived statistic columns.
func (s *Store) UpdateHostStats(ctx context.Context, hostID string, stats map[string]interface{}) error {
	return s.conn(ctx).Model(&models.Host{}).Where("id = ?", hostID).Updates(stats).Error
}

func (s *Store) TopRatedHosts(ctx context.Context, limit int) ([]models.Host, error) {
	var hosts []models.Host
	err := s.conn(ctx).
		Where("total_ratings > ?", 0).
		Order("average_rating DESC").
		Order("total_ratings DESC").
		Limit(limit).
		Find(&hosts).Error
	return hosts, err
}

// HostRatings returns every review rating given to the host.
func (s *Store) HostRatings(ctx context.Context, hostID string) ([]int, error) {
	var ratings []int
	err := s.conn(ctx).Model(&models.Review{}).Where("host_id = ?", hostID).Pluck("rating", &ratings).Error
	return ratings, err
}

// HostPaidRevenue sums the settled payments for all of the host's events.
func (s *Store) HostPaidRevenue(ctx context.Context, hostID string) (float64, error) {
	var total float64
	err := s.conn(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN events ON events.id = payments.event_id").
		Where("events.host_id = ? AND payments.status = ?", hostID, models.PaymentPaid).
		Scan(&total).Error
	return total, err
}

func (s *Store) CountHostEvents(ctx context.Context, hostID string, statuses ...models.EventStatus) (int64, error) {
	var count int64
	q := s.conn(ctx).Model(&models.Event{}).Where("host_id = ?", hostID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Count(&count).Error
	return count, err
}
