package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownJob is returned for a job name that was never registered.
	ErrUnknownJob = errors.New("unknown sweep job")

	// ErrDuplicateJob is returned when a job name is registered twice.
	ErrDuplicateJob = errors.New("duplicate sweep job")
)

// JobStatus describes a registered job.
type JobStatus struct {
	Name    string
	Regions []cache.Region
	Next    time.Time
	Prev    time.Time
}

type registered struct {
	job Job
	id  cron.EntryID
}

// Supervisor owns the sweep jobs and their scheduler.
type Supervisor struct {
	cron    *cron.Cron
	manager *cache.Manager
	logger  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]registered
}

// New creates a supervisor whose wall-clock schedules run in loc.
// A nil loc selects time.Local.
func New(manager *cache.Manager, logger zerolog.Logger, loc *time.Location) *Supervisor {
	if manager == nil {
		panic("cache manager cannot be nil")
	}
	if loc == nil {
		loc = time.Local
	}

	cl := cronLogger{logger: logger}
	return &Supervisor{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		manager: manager,
		logger:  logger,
		jobs:    make(map[string]registered),
	}
}

// Register adds a job. Jobs registered after Start are scheduled
// immediately.
func (s *Supervisor) Register(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("sweep job name cannot be empty")
	}
	if len(job.Regions) == 0 {
		return fmt.Errorf("sweep job %s: no regions", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}

	id, err := s.cron.AddFunc(job.Schedule, func() { s.sweep(job) })
	if err != nil {
		return fmt.Errorf("sweep job %s: schedule %q: %w", job.Name, job.Schedule, err)
	}
	s.jobs[job.Name] = registered{job: job, id: id}

	s.logger.Debug().
		Str("job", job.Name).
		Str("schedule", job.Schedule).
		Msg("Sweep job registered")
	return nil
}

// Start begins scheduling. It does not block.
func (s *Supervisor) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.Jobs())).Msg("Cache sweeper started")
}

// Stop prevents further runs and waits for an in-flight sweep to finish,
// or until ctx is done. A running sweep is never interrupted.
func (s *Supervisor) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("Cache sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Cache sweeper stop timed out, sweep still running")
		return ctx.Err()
	}
}

// RunNow runs the named job synchronously, outside its schedule.
func (s *Supervisor) RunNow(name string) error {
	s.mu.Lock()
	r, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	s.sweep(r.job)
	return nil
}

// Jobs returns the registered jobs sorted by name.
func (s *Supervisor) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, r := range s.jobs {
		e := s.cron.Entry(r.id)
		out = append(out, JobStatus{
			Name:    r.job.Name,
			Regions: r.job.Regions,
			Next:    e.Next,
			Prev:    e.Prev,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// sweep clears every region of job.
func (s *Supervisor) sweep(job Job) {
	start := time.Now()
	ctx := context.Background()

	for _, r := range job.Regions {
		s.manager.Clear(ctx, r)
	}

	SweepsTotal.WithLabelValues(job.Name).Inc()
	LastSweep.WithLabelValues(job.Name).SetToCurrentTime()

	s.logger.Info().
		Str("job", job.Name).
		Int("regions", len(job.Regions)).
		Dur("duration", time.Since(start)).
		Msg("Cache regions swept")
}

// cronLogger adapts zerolog to the scheduler's logger. Scheduler chatter
// (wake, run) is demoted to debug.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
