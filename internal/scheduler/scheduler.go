// Package scheduler runs the periodic jobs of obligo.
//
// Jobs run once a day at a configured hour and can be triggered at any time.
// A job that is already running is never started a second time, a trigger
// during a run waits for it and shares its result.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/obligo/backend/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var ErrUnknownJob = errors.New("there is no job with this name")

// Job is a named unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) (string, error) // Returns a short summary of what was done
}

// JobFunc adapts a function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) (string, error)
}

func (j JobFunc) Name() string {
	return j.JobName
}

func (j JobFunc) Run(ctx context.Context) (string, error) {
	return j.Fn(ctx)
}

// Run is the result of one execution of a job.
type Run struct {
	Job      string        `json:"job" example:"status-pass"`
	Summary  string        `json:"summary" example:"3 scheduled transactions are now overdue"`
	Started  time.Time     `json:"started" example:"2024-03-01T03:00:00Z"`
	Duration time.Duration `json:"duration" swaggertype:"integer" example:"1200000"`
	Shared   bool          `json:"shared"` // The trigger joined a run that was already in progress
}

// Scheduler runs jobs daily at Hour in Location.
type Scheduler struct {
	Hour     int
	Location *time.Location

	jobs  []Job
	group singleflight.Group
	now   func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New returns a scheduler for the jobs. It does not run anything before
// Start is called.
func New(hour int, loc *time.Location, jobs ...Job) *Scheduler {
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		Hour:     hour,
		Location: loc,
		jobs:     jobs,
		now:      time.Now,
	}
}

// Jobs returns the names of all jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.Name())
	}
	return names
}

// Trigger runs the job with the given name now and waits for it.
func (s *Scheduler) Trigger(ctx context.Context, name string) (Run, error) {
	for _, j := range s.jobs {
		if j.Name() == name {
			return s.run(ctx, j)
		}
	}

	return Run{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

// run executes j unless it is already running, in which case it waits for
// the running execution.
func (s *Scheduler) run(ctx context.Context, j Job) (Run, error) {
	v, err, shared := s.group.Do(j.Name(), func() (any, error) {
		started := s.now()
		summary, err := j.Run(ctx)
		elapsed := time.Since(started)

		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.JobRuns.WithLabelValues(j.Name(), result).Inc()
		metrics.JobDuration.WithLabelValues(j.Name()).Observe(elapsed.Seconds())

		return Run{Job: j.Name(), Summary: summary, Started: started, Duration: elapsed}, err
	})

	run, _ := v.(Run)
	run.Shared = shared

	if err != nil {
		log.Error().Str("job", j.Name()).Err(err).Msg("job failed")
		return run, err
	}

	log.Info().Str("job", j.Name()).Str("summary", run.Summary).Dur("duration", run.Duration).Msg("job finished")
	return run, nil
}

// RunAll runs every job once, in order. All jobs run even if one fails, the
// errors are joined.
func (s *Scheduler) RunAll(ctx context.Context) error {
	var errs []error
	for _, j := range s.jobs {
		if _, err := s.run(ctx, j); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", j.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Next returns the next time the jobs run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	t = t.In(s.Location)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, 0, 0, 0, s.Location)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, s.Hour, 0, 0, 0, s.Location)
	}
	return next
}

// Start runs all jobs once and then daily until ctx is cancelled or Stop is
// called. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	log.Info().Int("hour", s.Hour).Str("location", s.Location.String()).Strs("jobs", s.Jobs()).Msg("scheduler started")
}

func (s *Scheduler) loop(ctx context.Context) {
	// Catch up on startup, e.g. after the process was down at the scheduled hour
	_ = s.RunAll(ctx)

	for {
		wait := s.Next(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			_ = s.RunAll(ctx)
		}
	}
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
		log.Info().Msg("scheduler stopped")
	})
}
