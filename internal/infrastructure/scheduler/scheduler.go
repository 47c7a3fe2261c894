package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of background work run on an interval
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

// NewJob wraps a function as a Job
func NewJob(name string, fn func(ctx context.Context) error) Job {
	return funcJob{name: name, fn: fn}
}

// JobStats is a snapshot of a registered job
type JobStats struct {
	Name        string        `json:"name"`
	Interval    time.Duration `json:"interval"`
	Status      JobStatus     `json:"status"`
	Runs        int64         `json:"runs"`
	Failures    int64         `json:"failures"`
	LastError   string        `json:"last_error,omitempty"`
	LastStarted *time.Time    `json:"last_started,omitempty"`
	LastEnded   *time.Time    `json:"last_ended,omitempty"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	JobTimeout  time.Duration
	RunOnStart  bool
	StartJitter time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		JobTimeout: 5 * time.Minute,
		RunOnStart: true,
	}
}

type entry struct {
	job      Job
	interval time.Duration

	mu      sync.Mutex
	running bool
	stats   JobStats
}

// Scheduler runs registered jobs, each on its own ticker.
// A job never overlaps itself; a tick that arrives while it is still running is skipped.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*entry
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultSchedulerConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:  config,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Register adds a job. Jobs registered after Start begin on the next Start.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: job %s needs a positive interval", ErrInvalidConfig, job.Name())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("%w: job %s registered twice", ErrInvalidConfig, job.Name())
	}
	s.entries[job.Name()] = &entry{
		job:      job,
		interval: interval,
		stats:    JobStats{Name: job.Name(), Interval: interval, Status: JobStatusPending},
	}
	return nil
}

// Start starts one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(s.ctx, e)
	}

	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.entries)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels the loops and waits for running jobs to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs a job immediately and waits for it
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	running := s.isRunning
	s.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	if !running {
		return ErrSchedulerNotRunning
	}
	if !s.execute(ctx, e) {
		return ErrJobAlreadyRunning
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stats.Status == JobStatusFailed {
		return fmt.Errorf("job %s: %s", name, e.stats.LastError)
	}
	return nil
}

// Stats returns a snapshot of every job, sorted by name
func (s *Scheduler) Stats() []JobStats {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	out := make([]JobStats, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.stats)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	if s.config.StartJitter > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.StartJitter):
		}
	}
	if s.config.RunOnStart {
		s.execute(ctx, e)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, e)
		}
	}
}

// execute runs the job once; it reports false when the job was already running
func (s *Scheduler) execute(ctx context.Context, e *entry) bool {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		s.logger.Debug("Skipping overlapping run", zap.String("job", e.job.Name()))
		return false
	}
	e.running = true
	started := s.now()
	e.stats.Status = JobStatusRunning
	e.stats.LastStarted = &started
	e.mu.Unlock()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.safeRun(jobCtx, e.job)

	ended := s.now()
	e.mu.Lock()
	e.running = false
	e.stats.Runs++
	e.stats.LastEnded = &ended
	if err != nil {
		e.stats.Status = JobStatusFailed
		e.stats.Failures++
		e.stats.LastError = err.Error()
	} else {
		e.stats.Status = JobStatusSuccess
		e.stats.LastError = ""
	}
	e.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", e.job.Name()),
			zap.Duration("duration", ended.Sub(started)),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("Job completed",
			zap.String("job", e.job.Name()),
			zap.Duration("duration", ended.Sub(started)),
		)
	}
	return true
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}
