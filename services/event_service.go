// File: /services/event_service.go
package services

import (
	"context"
	"strings"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

type EventService struct {
	store *repositories.Store
	stats HostStats
	now   func() time.Time
}

func NewEventService(store *repositories.Store) *EventService {
	return &EventService{store: store, now: utcNow}
}

// CreateEvent publishes a new event owned by the caller's host profile.
func (s *EventService) CreateEvent(ctx context.Context, caller models.Caller, req CreateEventRequest) (*models.Event, error) {
	if err := Authorize(caller, ActionCreateEvent); err != nil {
		return nil, err
	}
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}

	host, err := s.store.FindHostByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, Forbidden("only hosts can create events"), "load host")
	}

	minParticipants := req.MinParticipants
	if minParticipants == 0 {
		minParticipants = 2
		if req.MaxParticipants < minParticipants {
			minParticipants = req.MaxParticipants
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	event := &models.Event{
		ID:              uuid.New().String(),
		HostID:          host.ID,
		Name:            strings.TrimSpace(req.Name),
		Type:            strings.TrimSpace(req.Type),
		Description:     req.Description,
		EventDate:       req.EventDate.UTC(),
		Location:        strings.TrimSpace(req.Location),
		ImageURL:        req.ImageURL,
		JoiningFee:      req.JoiningFee,
		Currency:        currency,
		MinParticipants: minParticipants,
		MaxParticipants: req.MaxParticipants,
		Status:          models.EventStatusOpen,
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.CreateEvent(ctx, event); err != nil {
			return Internal("create event", err)
		}
		if err := s.stats.RecomputeEventsHosted(ctx, tx, host.ID); err != nil {
			return Internal("recompute events hosted", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetEvent(ctx, event.ID)
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.store.FindEventByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}
	return event, nil
}

// ListEvents returns one page of events matching filter and the total match count.
func (s *EventService) ListEvents(ctx context.Context, filter repositories.EventFilter, page repositories.Page) ([]models.Event, int64, repositories.Page, error) {
	page = NormalizePage(page)
	events, total, err := s.store.ListEvents(ctx, filter, page)
	if err != nil {
		return nil, 0, page, Internal("list events", err)
	}
	return events, total, page, nil
}

// NormalizePage clamps paging input to sane bounds.
func NormalizePage(p repositories.Page) repositories.Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (s *EventService) UpdateEvent(ctx context.Context, caller models.Caller, id string, req UpdateEventRequest) (*models.Event, error) {
	if err := Authorize(caller, ActionManageEvent); err != nil {
		return nil, err
	}
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}
	if _, err := s.ownedEvent(ctx, caller, id); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ev, err := tx.LockEventByID(ctx, id)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		seats, err := tx.CountSeatsHeld(ctx, id)
		if err != nil {
			return Internal("count seats", err)
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Type != nil {
			updates["type"] = strings.TrimSpace(*req.Type)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.EventDate != nil {
			updates["event_date"] = req.EventDate.UTC()
		}
		if req.Location != nil {
			updates["location"] = strings.TrimSpace(*req.Location)
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}
		if req.JoiningFee != nil && *req.JoiningFee != ev.JoiningFee {
			if seats > 0 {
				return BadRequest("joining fee cannot change once participants have joined")
			}
			updates["joining_fee"] = *req.JoiningFee
		}

		minP, maxP := ev.MinParticipants, ev.MaxParticipants
		if req.MinParticipants != nil {
			minP = *req.MinParticipants
			updates["min_participants"] = minP
		}
		if req.MaxParticipants != nil {
			maxP = *req.MaxParticipants
			if int64(maxP) < seats {
				return BadRequest("maximum participants cannot be below the current participant count")
			}
			updates["max_participants"] = maxP
		}
		if minP > maxP {
			return BadRequest("maximum participants must not be less than minimum participants")
		}

		if len(updates) > 0 {
			if err := tx.UpdateEvent(ctx, id, updates); err != nil {
				return Internal("update event", err)
			}
		}
		ev.MaxParticipants = maxP
		return syncEventCapacity(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}

	return s.GetEvent(ctx, id)
}

// UpdateEventStatus moves an event to a new status. Reopening an event that
// is at capacity leaves it FULL.
func (s *EventService) UpdateEventStatus(ctx context.Context, caller models.Caller, id string, status models.EventStatus) (*models.Event, error) {
	if err := Authorize(caller, ActionManageEvent); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, BadRequest("invalid event status")
	}
	if _, err := s.ownedEvent(ctx, caller, id); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ev, err := tx.LockEventByID(ctx, id)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		if status == models.EventStatusFull {
			status = models.EventStatusOpen
		}
		ev.Status = status
		return syncEventCapacity(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}

	return s.GetEvent(ctx, id)
}

// DeleteEvent removes an event that nobody has joined.
func (s *EventService) DeleteEvent(ctx context.Context, caller models.Caller, id string) error {
	if err := Authorize(caller, ActionManageEvent); err != nil {
		return err
	}
	event, err := s.ownedEvent(ctx, caller, id)
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.LockEventByID(ctx, id); err != nil {
			return lookupErr(err, ErrEventNotFound, "lock event")
		}
		seats, err := tx.CountSeatsHeld(ctx, id)
		if err != nil {
			return Internal("count seats", err)
		}
		if seats > 0 {
			return BadRequest("cannot delete an event with active participants, cancel it instead")
		}
		if err := tx.DeleteEvent(ctx, id); err != nil {
			return lookupErr(err, ErrEventNotFound, "delete event")
		}
		if err := s.stats.RecomputeEventsHosted(ctx, tx, event.HostID); err != nil {
			return Internal("recompute events hosted", err)
		}
		return nil
	})
}

// ownedEvent loads the event and checks the caller hosts it or is an admin.
func (s *EventService) ownedEvent(ctx context.Context, caller models.Caller, id string) (*models.Event, error) {
	event, err := s.store.FindEventByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}
	if caller.Role != models.RoleAdmin && event.Host.UserID != caller.UserID {
		return nil, ErrNotEventOwner
	}
	return event, nil
}
