package jobs

import (
	"context"
	"log"
	"time"

	"pulp-league/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// WindowCycler advances the betting window cycle on a schedule: locks open
// windows past their open duration, closes stale locked windows, and opens
// the next one.
type WindowCycler struct {
	windowService *services.WindowService
	scheduler     gocron.Scheduler
	interval      time.Duration
	openFor       time.Duration
	lockFor       time.Duration
}

// NewWindowCycler creates a new window cycle job
func NewWindowCycler(
	windowService *services.WindowService,
	interval time.Duration,
	openFor time.Duration,
	lockFor time.Duration,
) *WindowCycler {
	return &WindowCycler{
		windowService: windowService,
		interval:      interval,
		openFor:       openFor,
		lockFor:       lockFor,
	}
}

// Start begins the cycle job
func (w *WindowCycler) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := w.windowService.Advance(ctx, w.openFor, w.lockFor); err != nil {
				log.Printf("[WindowCycler] Error advancing window cycle: %v", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	w.scheduler = scheduler

	log.Printf("[WindowCycler] Started (interval: %v, open: %v, lock: %v)",
		w.interval, w.openFor, w.lockFor)
	return nil
}

// Stop shuts the cycle job down
func (w *WindowCycler) Stop() {
	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			log.Printf("[WindowCycler] Error shutting down scheduler: %v", err)
		}
	}
}
