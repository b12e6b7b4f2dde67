package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Clock abstracts wall time so schedules can be tested without waiting.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// TimeOfDay is a wall-clock time in the scheduler's location.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

type Job func(ctx context.Context)

type Scheduler struct {
	times      []TimeOfDay
	runOnStart bool
	loc        *time.Location
	clock      Clock
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

func New(times []TimeOfDay, runOnStart bool, opts ...Option) *Scheduler {
	sorted := make([]TimeOfDay, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Hour != sorted[j].Hour {
			return sorted[i].Hour < sorted[j].Hour
		}
		return sorted[i].Minute < sorted[j].Minute
	})

	s := &Scheduler{
		times:      sorted,
		runOnStart: runOnStart,
		loc:        time.Local,
		clock:      realClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the first scheduled time strictly after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	now = now.In(s.loc)
	for day := 0; day < 2; day++ {
		y, m, d := now.AddDate(0, 0, day).Date()
		for _, t := range s.times {
			candidate := time.Date(y, m, d, t.Hour, t.Minute, 0, 0, s.loc)
			if candidate.After(now) {
				return candidate
			}
		}
	}
	return time.Time{}
}

// Start runs job at every scheduled time until ctx is cancelled. Runs never
// overlap: the next wait starts only after job returns.
func (s *Scheduler) Start(ctx context.Context, job Job) {
	if s.runOnStart {
		job(ctx)
	}

	if len(s.times) == 0 {
		slog.Warn("no schedule configured, scheduler idle")
		<-ctx.Done()
		return
	}

	for {
		next := s.Next(s.clock.Now())
		wait := next.Sub(s.clock.Now())
		slog.Info("next ingestion run scheduled", "at", next.Format(time.RFC3339), "in", wait.Round(time.Second).String())

		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-s.clock.After(wait):
		}

		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}
}
