package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/hoopscores/internal/gameday"
)

// Reloader is the part of the rotator the scheduler drives.
type Reloader interface {
	Initialize(ctx context.Context)
	LastFetchedKey() string
}

// Scheduler reloads the rotator once a day and whenever a client comes back
// to a board that shows a stale day.
type Scheduler struct {
	s        gocron.Scheduler
	clock    clockwork.Clock
	schedule *gameday.Schedule
	rotator  Reloader

	mu        sync.Mutex
	reloadJob uuid.UUID
	nextRun   time.Time
}

func NewScheduler(rotator Reloader, schedule *gameday.Schedule, clock clockwork.Clock) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(gameday.Zone),
		gocron.WithClock(clock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:        s,
		clock:    clock,
		schedule: schedule,
		rotator:  rotator,
	}, nil
}

func (s *Scheduler) Start() error {
	if err := s.scheduleReload(); err != nil {
		return err
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

// NextReload reports when the pending timed reload fires.
func (s *Scheduler) NextReload() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// OnVisible reloads immediately when the day the rotator fetched is no
// longer yesterday. It reports whether a reload ran.
func (s *Scheduler) OnVisible(ctx context.Context) bool {
	current := gameday.YesterdayKey(s.clock.Now())
	fetched := s.rotator.LastFetchedKey()
	if current == fetched {
		return false
	}

	slog.Info("Board is stale, reloading", "fetched", fetched, "current", current)
	s.rotator.Initialize(ctx)
	return true
}

// scheduleReload replaces the pending one-shot reload with one at the next
// scheduled instant.
func (s *Scheduler) scheduleReload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reloadJob != uuid.Nil {
		if err := s.s.RemoveJob(s.reloadJob); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
			slog.Error("Failed to remove reload job", "error", err)
		}
		s.reloadJob = uuid.Nil
	}

	at := s.schedule.Next(s.clock.Now())
	job, err := s.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(s.timedReload),
		gocron.WithName("daily-reload"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reload job: %w", err)
	}

	s.reloadJob = job.ID()
	s.nextRun = at
	slog.Info("Scheduled reload", "at", at)
	return nil
}

func (s *Scheduler) timedReload() {
	slog.Info("Running scheduled reload")
	s.rotator.Initialize(context.Background())

	if err := s.scheduleReload(); err != nil {
		slog.Error("Failed to schedule next reload", "error", err)
	}
}
