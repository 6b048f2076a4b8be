package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"eventhub-api/repositories"
)

// HostStats recomputes the derived host columns from their source records.
// Every method is idempotent; callers pass the Store of the transaction the
// triggering write ran in.
type HostStats struct{}

// RecomputeHostRating stores the mean review rating, rounded to two
// decimals, and the review count. A host without reviews gets 0 and 0.
func (HostStats) RecomputeHostRating(ctx context.Context, store *repositories.Store, hostID string) error {
	ratings, err := store.HostRatings(ctx, hostID)
	if err != nil {
		return fmt.Errorf("load ratings for host %s: %w", hostID, err)
	}

	average := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		average = roundTo2(float64(sum) / float64(len(ratings)))
	}

	return store.UpdateHostStats(ctx, hostID, map[string]interface{}{
		"average_rating": average,
		"total_ratings":  len(ratings),
	})
}

// RecomputeHostRevenue stores the sum of all PAID payments for the host's events.
func (HostStats) RecomputeHostRevenue(ctx context.Context, store *repositories.Store, hostID string) error {
	total, err := store.HostPaidRevenue(ctx, hostID)
	if err != nil {
		return fmt.Errorf("sum revenue for host %s: %w", hostID, err)
	}
	return store.UpdateHostStats(ctx, hostID, map[string]interface{}{
		"total_revenue": roundTo2(total),
	})
}

func (HostStats) RecomputeEventsHosted(ctx context.Context, store *repositories.Store, hostID string) error {
	count, err := store.CountHostEvents(ctx, hostID)
	if err != nil {
		return fmt.Errorf("count events for host %s: %w", hostID, err)
	}
	return store.UpdateHostStats(ctx, hostID, map[string]interface{}{
		"total_events_hosted": count,
	})
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// minorUnits converts a major-unit amount to gateway minor units.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func utcNow() time.Time {
	return time.Now().UTC()
}
