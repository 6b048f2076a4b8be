package services

import (
	"context"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

type HostService struct {
	store *repositories.Store
}

func NewHostService(store *repositories.Store) *HostService {
	return &HostService{store: store}
}

type HostProfile struct {
	Host  *models.Host     `json:"host"`
	Stats models.HostStats `json:"stats"`
}

func (s *HostService) GetHost(ctx context.Context, id string) (*HostProfile, error) {
	host, err := s.store.FindHostByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrHostNotFound, "load host")
	}
	return s.profile(ctx, host)
}

// MyHostProfile returns the dashboard for the caller's own host profile.
func (s *HostService) MyHostProfile(ctx context.Context, caller models.Caller) (*HostProfile, error) {
	host, err := s.store.FindHostByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, ErrHostNotFound, "load host")
	}
	return s.profile(ctx, host)
}

func (s *HostService) TopRatedHosts(ctx context.Context, limit int) ([]models.Host, error) {
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	hosts, err := s.store.TopRatedHosts(ctx, limit)
	if err != nil {
		return nil, Internal("load top hosts", err)
	}
	return hosts, nil
}

// HostEvents lists a host's events, newest first.
func (s *HostService) HostEvents(ctx context.Context, hostID string, page repositories.Page) ([]models.Event, int64, repositories.Page, error) {
	if _, err := s.store.FindHostByID(ctx, hostID); err != nil {
		return nil, 0, page, lookupErr(err, ErrHostNotFound, "load host")
	}
	page = NormalizePage(page)
	events, total, err := s.store.ListEvents(ctx, repositories.EventFilter{HostID: hostID}, page)
	if err != nil {
		return nil, 0, page, Internal("list host events", err)
	}
	return events, total, page, nil
}

func (s *HostService) profile(ctx context.Context, host *models.Host) (*HostProfile, error) {
	upcoming, err := s.store.CountHostEvents(ctx, host.ID, models.EventStatusOpen, models.EventStatusFull)
	if err != nil {
		return nil, Internal("count upcoming events", err)
	}
	completed, err := s.store.CountHostEvents(ctx, host.ID, models.EventStatusCompleted)
	if err != nil {
		return nil, Internal("count completed events", err)
	}

	return &HostProfile{
		Host: host,
		Stats: models.HostStats{
			TotalEventsHosted: host.TotalEventsHosted,
			UpcomingEvents:    upcoming,
			CompletedEvents:   completed,
			TotalRevenue:      host.TotalRevenue,
			AverageRating:     host.AverageRating,
			TotalRatings:      host.TotalRatings,
		},
	}, nil
}
