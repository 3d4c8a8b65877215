package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
)

const (
	logMsgJobStarted   = "scheduled job started"
	logMsgJobCompleted = "scheduled job completed"
	logMsgJobFailed    = "scheduled job failed"
	logMsgJobSkipped   = "scheduled job skipped, previous run still busy"

	logAttrJob        = "job"
	logAttrDurationMS = "duration_ms"
	logAttrError      = "error"
)

var (
	ErrInvalidSpec         = errors.New("invalid cron spec")
	ErrEmptyJobName        = errors.New("job name must not be empty")
	ErrDuplicateJob        = errors.New("job already registered")
	ErrUnknownJob          = errors.New("unknown job")
	ErrJobAlreadyRunning   = errors.New("job is already running")
	ErrNonPositiveDuration = errors.New("job timeout must be positive")
	ErrSchedulerStopped    = errors.New("scheduler is stopped")
)

// JobFunc is the work of one scheduled run.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	run     JobFunc
	running atomic.Bool
}

// Scheduler triggers registered jobs on their cron schedules.
type Scheduler struct {
	cron             *cron.Cron
	jobs             map[string]*job
	jobTimeout       time.Duration
	ctx              context.Context
	cancel           context.CancelFunc
	mu               sync.Mutex
	stopped          bool
	inFlight         sync.WaitGroup
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithLocation evaluates the schedules in loc instead of the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) error {
		s.cron = cron.NewWithLocation(loc)
		return nil
	}
}

// WithJobTimeout bounds every run; zero means no bound.
func WithJobTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) error {
		if timeout <= 0 {
			return ErrNonPositiveDuration
		}

		s.jobTimeout = timeout

		return nil
	}
}

func WithLogger(logger shell.Logger) Option {
	return func(s *Scheduler) error {
		s.logger = logger
		return nil
	}
}

func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Scheduler) error {
		s.contextualLogger = logger
		return nil
	}
}

// New creates a stopped Scheduler without jobs.
func New(options ...Option) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:   cron.New(),
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			cancel()
			return nil, err
		}
	}

	return s, nil
}

// Add registers a job under a unique name.
func (s *Scheduler) Add(name, spec string, run JobFunc) error {
	if name == "" {
		return ErrEmptyJobName
	}

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	schedule, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSpec, spec, err)
	}

	j := &job{name: name, run: run}
	s.jobs[name] = j

	s.cron.Schedule(schedule, cron.FuncJob(func() {
		if err := s.execute(s.ctx, j); errors.Is(err, ErrJobAlreadyRunning) {
			s.logInfo(s.ctx, logMsgJobSkipped, logAttrJob, j.name)
		}
	}))

	return nil
}

// Start begins triggering jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops triggering, cancels running jobs and waits for them to return.
// Runs that start after Stop return ErrSchedulerStopped.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.inFlight.Wait()
}

// RunNow runs the named job once, outside of its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	return s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.inFlight.Done()

	if !j.running.CompareAndSwap(false, true) {
		return ErrJobAlreadyRunning
	}
	defer j.running.Store(false)

	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	s.logInfo(ctx, logMsgJobStarted, logAttrJob, j.name)
	start := time.Now()

	err := j.run(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logError(ctx, logMsgJobFailed,
			logAttrJob, j.name,
			logAttrDurationMS, shell.ToMilliseconds(duration),
			logAttrError, err.Error())

		return err
	}

	s.logInfo(ctx, logMsgJobCompleted,
		logAttrJob, j.name,
		logAttrDurationMS, shell.ToMilliseconds(duration))

	return nil
}

// enter registers a run unless the scheduler is stopped; Add and Wait never overlap.
func (s *Scheduler) enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	s.inFlight.Add(1)

	return nil
}

func (s *Scheduler) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
	}

	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
