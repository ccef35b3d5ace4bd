package service

import (
	"context"
	"log"
	"time"
)

// StuckJobFailer marks long-running PROCESSING jobs as failed.
type StuckJobFailer interface {
	FailStuck(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ReaperWorker periodically fails jobs stuck in PROCESSING past the deadline.
// A crashed or abandoned run leaves a PROCESSING row behind; without the
// reaper, clients would poll it forever.
type ReaperWorker struct {
	jobs       StuckJobFailer
	interval   time.Duration
	stuckAfter time.Duration
	stopCh     chan struct{}
}

// NewReaperWorker creates a worker that ticks every interval and fails jobs
// older than stuckAfter.
func NewReaperWorker(jobs StuckJobFailer, interval, stuckAfter time.Duration) *ReaperWorker {
	return &ReaperWorker{
		jobs:       jobs,
		interval:   interval,
		stuckAfter: stuckAfter,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic reap loop. It runs one tick immediately, then
// every interval.
func (w *ReaperWorker) Start(ctx context.Context) {
	log.Printf("job-reaper: starting (interval=%s, stuck after=%s)", w.interval, w.stuckAfter)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("job-reaper: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("job-reaper: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *ReaperWorker) Stop() {
	close(w.stopCh)
}

func (w *ReaperWorker) tick(ctx context.Context) {
	reaped, err := w.jobs.FailStuck(ctx, w.stuckAfter)
	if err != nil {
		log.Printf("job-reaper: error: %v", err)
		return
	}
	if reaped > 0 {
		log.Printf("job-reaper: marked %d stuck jobs as failed", reaped)
	}
}
