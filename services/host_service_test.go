package services

import (
	"errors"
	"testing"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

func TestHostService_ProfileAndTopRated(t *testing.T) {
	env := newTestEnv(t)
	hosts := NewHostService(env.store)
	owner, host := env.host("hana")
	_, quiet := env.host("quinn")

	env.event(host)
	env.event(host, withStatus(models.EventStatusCompleted), startingIn(-48*time.Hour))
	alice := env.user("alice", models.RoleUser)
	ev := env.attended(host, alice)
	if _, err := env.reviews.CreateReview(env.ctx, alice, CreateReviewRequest{EventID: ev.ID, Rating: 4}); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	profile, err := hosts.MyHostProfile(env.ctx, owner)
	if err != nil {
		t.Fatalf("MyHostProfile: %v", err)
	}
	if profile.Stats.UpcomingEvents != 2 || profile.Stats.CompletedEvents != 1 {
		t.Errorf("stats = %+v, want 2 upcoming and 1 completed", profile.Stats)
	}
	if profile.Stats.AverageRating != 4 || profile.Stats.TotalRatings != 1 {
		t.Errorf("rating stats = %+v", profile.Stats)
	}

	top, err := hosts.TopRatedHosts(env.ctx, 0)
	if err != nil {
		t.Fatalf("TopRatedHosts: %v", err)
	}
	if len(top) != 1 || top[0].ID != host.ID {
		t.Errorf("top rated = %+v, want only %s", top, host.ID)
	}

	events, total, _, err := hosts.HostEvents(env.ctx, quiet.ID, repositories.Page{})
	if err != nil || total != 0 || len(events) != 0 {
		t.Errorf("HostEvents(quiet) = %d/%d, %v", len(events), total, err)
	}
	if _, err := hosts.GetHost(env.ctx, "missing"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
}
