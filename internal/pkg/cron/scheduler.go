package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs until stopped. A job never overlaps with itself.
type Scheduler struct {
	jobs    []Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{jobs: make([]Job, 0)}
}

// AddJob registers a job. Jobs added after Start are ignored until the next Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interval <= 0 {
		slog.Warn("Cron job skipped, non-positive interval", "name", name, "interval", interval)
		return
	}
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start launches every job in its own goroutine, bound to ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	executeJob(ctx, job)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			executeJob(ctx, job)
		}
	}
}

func executeJob(ctx context.Context, job Job) {
	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs every registered job once, sequentially.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		executeJob(ctx, job)
	}
}
