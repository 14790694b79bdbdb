package reservation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// OfferRefresher advances offer lifecycle statuses.
type OfferRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Worker runs periodic maintenance: offer status refresh and completion of
// stays whose check-out day has passed.
type Worker struct {
	reservations *Service
	offers       OfferRefresher
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewWorker creates a maintenance worker
func NewWorker(reservations *Service, offers OfferRefresher, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Worker{
		reservations: reservations,
		offers:       offers,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	log.Info().Dur("interval", w.interval).Msg("Starting maintenance worker...")
	go w.loop()
}

// Stop stops the worker and waits for the current run to finish
func (w *Worker) Stop() {
	log.Info().Msg("Stopping maintenance worker...")
	close(w.stopCh)
	<-w.doneCh
}

func (w *Worker) loop() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	w.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			w.RunOnce(context.Background())
		case <-w.stopCh:
			return
		}
	}
}

// RunOnce performs a single maintenance pass.
func (w *Worker) RunOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	log.Debug().Msg("Starting maintenance pass...")

	offers, err := w.offers.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh offer statuses")
	} else if offers > 0 {
		log.Info().Int("count", offers).Msg("Refreshed offer statuses")
	}

	completed, err := w.reservations.CompleteEnded(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to complete ended reservations")
	} else if completed > 0 {
		log.Info().Int("count", completed).Msg("Completed ended reservations")
	}

	log.Debug().Msg("Finished maintenance pass")
}
