// File: /jobs/reservation_expiry_job.go
package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// ReservationExpirer releases unpaid reservations whose hold has lapsed.
type ReservationExpirer interface {
	ExpireReservations(ctx context.Context) (int, error)
}

// ReservationExpiryJob periodically frees seats held by unpaid reservations
// so FULL events reopen without waiting for the next join.
type ReservationExpiryJob struct {
	expirer  ReservationExpirer
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewReservationExpiryJob(expirer ReservationExpirer, interval time.Duration) *ReservationExpiryJob {
	return &ReservationExpiryJob{
		expirer:  expirer,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop
func (j *ReservationExpiryJob) Start() {
	log.Printf("Reservation expiry job started (every %s)", j.interval)
	j.ticker = time.NewTicker(j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		// Run immediately on start
		j.sweep()

		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-j.done:
				log.Println("Reservation expiry job stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (j *ReservationExpiryJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
	j.wg.Wait()
}

// RunOnce performs a single sweep and reports how many seats were released.
func (j *ReservationExpiryJob) RunOnce(ctx context.Context) (int, error) {
	return j.expirer.ExpireReservations(ctx)
}

func (j *ReservationExpiryJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	released, err := j.RunOnce(ctx)
	if err != nil {
		log.Printf("Error during reservation sweep: %v", err)
		return
	}
	if released > 0 {
		log.Printf("Released %d expired reservations", released)
	}
}
