// File: /services/review_service.go
package services

import (
	"context"
	"errors"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/google/uuid"
)

// ReviewService manages participant reviews of past events. Every write
// recomputes the host rating in the same transaction.
type ReviewService struct {
	store *repositories.Store
	stats HostStats
	now   func() time.Time
}

func NewReviewService(store *repositories.Store) *ReviewService {
	return &ReviewService{store: store, now: utcNow}
}

func (s *ReviewService) CreateReview(ctx context.Context, caller models.Caller, req CreateReviewRequest) (*models.Review, error) {
	if err := Authorize(caller, ActionWriteReview); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "load user")
	}
	event, err := s.store.FindEventByID(ctx, req.EventID)
	if err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}

	participant, err := s.store.FindParticipant(ctx, user.ID, event.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, Internal("load participant", err)
	}
	if participant == nil || participant.Status != models.ParticipantJoined {
		return nil, ErrNotParticipant
	}
	if event.EventDate.After(s.now()) {
		return nil, ErrReviewTooEarly
	}

	review := &models.Review{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		EventID: event.ID,
		HostID:  event.HostID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		exists, err := tx.ReviewExists(ctx, user.ID, event.ID)
		if err != nil {
			return Internal("check review", err)
		}
		if exists {
			return ErrAlreadyReviewed
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return Internal("create review", err)
		}
		if err := s.stats.RecomputeHostRating(ctx, tx, event.HostID); err != nil {
			return Internal("recompute host rating", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetReview(ctx, review.ID)
}

func (s *ReviewService) UpdateReview(ctx context.Context, caller models.Caller, id string, req UpdateReviewRequest) (*models.Review, error) {
	if err := Authorize(caller, ActionWriteReview); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	review, err := s.store.FindReviewByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrReviewNotFound, "load review")
	}
	if review.UserID != caller.UserID {
		return nil, ErrNotReviewAuthor
	}

	updates := map[string]interface{}{}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.UpdateReview(ctx, review.ID, updates); err != nil {
			return Internal("update review", err)
		}
		if err := s.stats.RecomputeHostRating(ctx, tx, review.HostID); err != nil {
			return Internal("recompute host rating", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetReview(ctx, review.ID)
}

// DeleteReview removes a review. Admins may delete any review.
func (s *ReviewService) DeleteReview(ctx context.Context, caller models.Caller, id string) error {
	if caller.UserID == "" {
		return Unauthorized("authentication required")
	}

	review, err := s.store.FindReviewByID(ctx, id)
	if err != nil {
		return lookupErr(err, ErrReviewNotFound, "load review")
	}
	if review.UserID != caller.UserID && !Can(caller.Role, ActionModerateReview) {
		return ErrNotReviewAuthor
	}

	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.DeleteReview(ctx, review.ID); err != nil {
			return Internal("delete review", err)
		}
		if err := s.stats.RecomputeHostRating(ctx, tx, review.HostID); err != nil {
			return Internal("recompute host rating", err)
		}
		return nil
	})
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*models.Review, error) {
	review, err := s.store.FindReviewByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrReviewNotFound, "load review")
	}
	return review, nil
}

func (s *ReviewService) HostReviews(ctx context.Context, hostID string) ([]models.Review, error) {
	if _, err := s.store.FindHostByID(ctx, hostID); err != nil {
		return nil, lookupErr(err, ErrHostNotFound, "load host")
	}
	reviews, err := s.store.ReviewsForHost(ctx, hostID)
	if err != nil {
		return nil, Internal("load reviews", err)
	}
	return reviews, nil
}

func (s *ReviewService) EventReviews(ctx context.Context, eventID string) ([]models.Review, error) {
	if _, err := s.store.FindEventByID(ctx, eventID); err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}
	reviews, err := s.store.ReviewsForEvent(ctx, eventID)
	if err != nil {
		return nil, Internal("load reviews", err)
	}
	return reviews, nil
}

func (s *ReviewService) MyReviews(ctx context.Context, caller models.Caller) ([]models.Review, error) {
	if caller.UserID == "" {
		return nil, Unauthorized("authentication required")
	}
	reviews, err := s.store.ReviewsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, Internal("load reviews", err)
	}
	return reviews, nil
}
