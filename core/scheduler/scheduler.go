// Package scheduler runs named recurring jobs on cron schedules in a fixed timezone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/foodpod-bot/foodpod/core/logger"
)

// specParser accepts standard 5-field expressions and @daily style descriptors.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is a unit of scheduled work. The context is cancelled on Stop.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron with logging, panic recovery and named entries.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a stopped scheduler evaluating specs in loc (UTC when nil).
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithParser(specParser), cron.WithLocation(loc)),
		loc:     loc,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// DailySpec converts a "HH:MM" wall clock time into a cron expression.
func DailySpec(clock string) (string, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("scheduler: invalid time %q, want HH:MM", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("scheduler: invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("scheduler: invalid minute in %q", clock)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Validate reports whether spec parses.
func Validate(spec string) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	return nil
}

// Add registers job under name. Names are unique.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if job == nil {
		return fmt.Errorf("scheduler: nil job %q", name)
	}
	if err := Validate(spec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("scheduler: add %q: %w", name, err)
	}
	s.entries[name] = id
	logger.Info(s.ctx, "scheduler", "job.registered",
		slog.String("status", "ok"),
		slog.String("job", name),
		slog.String("spec", spec),
		slog.String("tz", s.loc.String()),
	)
	return nil
}

// Next returns the next activation time of the named job once started.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	next := s.cron.Entry(id).Next
	return next, !next.IsZero()
}

// RunNow executes the named job synchronously, outside of its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q", name)
	}
	s.cron.Entry(id).Job.Run()
	return nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.entries {
		if next, ok := s.nextLocked(name); ok {
			logger.Info(s.ctx, "scheduler", "job.armed",
				slog.String("job", name),
				slog.Time("next_run", next),
			)
		}
	}
}

func (s *Scheduler) nextLocked(name string) (time.Time, bool) {
	next := s.cron.Entry(s.entries[name]).Next
	return next, !next.IsZero()
}

// Stop prevents new activations, cancels the job context and waits for
// running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

func (s *Scheduler) run(name string, job Job) {
	ctx := logger.WithJob(s.ctx, name)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "scheduler", "job.panic",
				slog.String("status", "fail"),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	if err := job(ctx); err != nil {
		logger.Error(ctx, "scheduler", "job.run",
			slog.String("status", "fail"),
			slog.Duration("duration", time.Since(start)),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Info(ctx, "scheduler", "job.run",
		slog.String("status", "ok"),
		slog.Duration("duration", time.Since(start)),
	)
}
