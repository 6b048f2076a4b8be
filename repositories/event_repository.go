package repositories

import (
	"context"
	"strings"
	"time"

	"eventhub-api/models"

	"gorm.io/gorm/clause"
)

// EventFilter narrows an event listing. Zero values are ignored. On restricts
// the listing to events starting on that calendar day.
type EventFilter struct {
	Search       string
	Type         string
	Location     string
	Status       models.EventStatus
	HostID       string
	MinFee       *float64
	MaxFee       *float64
	On           *time.Time
	UpcomingFrom *time.Time
}

type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

var eventSortColumns = map[string]string{
	"event_date":  "event_date",
	"eventDate":   "event_date",
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"joining_fee": "joining_fee",
	"joiningFee":  "joining_fee",
	"name":        "name",
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Page) order() string {
	col, ok := eventSortColumns[p.SortBy]
	if !ok {
		col = "created_at"
	}
	if strings.EqualFold(p.SortOrder, "asc") {
		return col + " ASC"
	}
	return col + " DESC"
}

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	return s.conn(ctx).Omit(clause.Associations).Create(event).Error
}

func (s *Store) FindEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := s.conn(ctx).Preload("Host").First(&event, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

// LockEventByID reads the event row with an exclusive row lock. Only
// meaningful inside Transaction.
func (s *Store) LockEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := s.forUpdate(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates).Error
}

// SetEventCapacity stores the cached seat count and the derived status.
func (s *Store) SetEventCapacity(ctx context.Context, id string, seats int, status models.EventStatus) error {
	return s.conn(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(map[string]interface{}{
		"participants_count": seats,
		"status":             status,
	}).Error
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res := s.conn(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, filter EventFilter, page Page) ([]models.Event, int64, error) {
	q := s.conn(ctx).Model(&models.Event{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.HostID != "" {
		q = q.Where("host_id = ?", filter.HostID)
	}
	if filter.MinFee != nil {
		q = q.Where("joining_fee >= ?", *filter.MinFee)
	}
	if filter.MaxFee != nil {
		q = q.Where("joining_fee <= ?", *filter.MaxFee)
	}
	if filter.On != nil {
		start := time.Date(filter.On.Year(), filter.On.Month(), filter.On.Day(), 0, 0, 0, 0, filter.On.Location())
		q = q.Where("event_date >= ? AND event_date < ?", start, start.AddDate(0, 0, 1))
	}
	if filter.UpcomingFrom != nil {
		q = q.Where("event_date > ?", *filter.UpcomingFrom)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := q.Preload("Host").
		Order(page.order()).
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
