package repositories

import (
	"context"

	"eventhub-api/models"

	"gorm.io/gorm/clause"
)

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.conn(ctx).Omit(clause.Associations).Create(p).Error
}

func (s *Store) FindPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.conn(ctx).Where("transaction_id = ?", transactionID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) LockPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.forUpdate(ctx).Where("transaction_id = ?", transactionID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) FindPaymentByGatewayRef(ctx context.Context, gatewayRef string) (*models.Payment, error) {
	var p models.Payment
	if err := s.conn(ctx).Where("gateway_ref = ?", gatewayRef).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// LatestPayment returns the most recent payment of the user for the event
// in one of the given statuses.
func (s *Store) LatestPayment(ctx context.Context, userID, eventID string, statuses ...models.PaymentStatus) (*models.Payment, error) {
	var p models.Payment
	q := s.conn(ctx).Where("user_id = ? AND event_id = ?", userID, eventID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at DESC").First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) UpdatePayment(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) PaymentsForUser(ctx context.Context, userID string) ([]models.Payment, error) {
	var out []models.Payment
	err := s.conn(ctx).Preload("Event").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}
