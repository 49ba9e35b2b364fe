package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/logging"
)

// Job is one unit of work.
type Job struct {
	ID  string
	Run func(ctx context.Context) error
}

// Result is the outcome of one job.
type Result struct {
	ID       string
	Err      error
	Duration time.Duration
}

// Stats reports worker usage.
type Stats struct {
	Active int `json:"active_workers"`
	Peak   int `json:"peak_workers"`
	Limit  int `json:"limit"`
}

// Scheduler runs jobs for one connector, never exceeding the smaller of
// the global and per-connector limits.
type Scheduler struct {
	config    *Config
	connector string
	logger    *zap.Logger

	mu     sync.Mutex
	active int
	peak   int
}

// New creates a new scheduler.
func New(cfg *Config, connectorName string, logger *zap.Logger) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Scheduler{
		config:    cfg,
		connector: connectorName,
		logger:    logging.OrNop(logger),
	}
}

// Limit returns the effective concurrency.
func (s *Scheduler) Limit() int {
	return s.config.EffectiveLimit(s.connector)
}

// Dispatch runs every job and returns results in job order. Jobs that have
// not started when ctx is cancelled report ctx.Err().
func (s *Scheduler) Dispatch(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	slots := make(chan struct{}, s.Limit())
	var wg sync.WaitGroup

	for i, job := range jobs {
		results[i].ID = job.ID
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case slots <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-slots }()
			s.acquire()
			defer s.release()

			start := time.Now()
			err := job.Run(ctx)
			results[i].Err = err
			results[i].Duration = time.Since(start)

			if err != nil {
				s.logger.Warn("job failed", zap.String("job", job.ID), zap.Error(err))
			} else {
				s.logger.Debug("job done", zap.String("job", job.ID), zap.Duration("took", results[i].Duration))
			}
		}(i, job)
	}

	wg.Wait()
	return results
}

func (s *Scheduler) acquire() {
	s.mu.Lock()
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

// GetStats returns current scheduler statistics.
func (s *Scheduler) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Active: s.active, Peak: s.peak, Limit: s.Limit()}
}
