package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of work run on a fixed interval
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner runs registered jobs on their intervals until stopped
type Runner struct {
	jobs   []Job
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRunner creates a runner with no jobs
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Add registers a job. Jobs added after Start are not scheduled.
func (r *Runner) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run function")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return nil
}

// Start launches one loop per job
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return nil
	}
	r.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
		r.logger.Info("Scheduled job started",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval),
		)
	}
	return nil
}

// Stop cancels the loops and waits for running jobs or ctx
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Scheduled job panicked", zap.String("job", job.Name), zap.Any("panic", rec))
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		r.logger.Error("Scheduled job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	r.logger.Debug("Scheduled job finished",
		zap.String("job", job.Name),
		zap.Duration("duration", time.Since(start)),
	)
}
