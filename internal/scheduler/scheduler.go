package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/hub"
)

// Scheduler reaps expired sessions from the hub on a fixed interval.
type Scheduler struct {
	s        gocron.Scheduler
	hub      *hub.Hub
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewScheduler(h *hub.Hub, ttl, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		s:        s,
		hub:      h,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		log:      logger,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweepSessions),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create session sweep job: %w", err)
	}

	s.s.Start()
	s.log.Info("scheduler started",
		zap.Duration("session_ttl", s.ttl),
		zap.Duration("sweep_interval", s.interval))
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) sweepSessions() {
	reply := make(chan int, 1)
	select {
	case s.hub.Inbox() <- hub.Sweep{MaxAge: s.ttl, Now: s.now(), Reply: reply}:
	case <-time.After(5 * time.Second):
		s.log.Warn("session sweep skipped: hub busy")
		return
	}

	select {
	case n := <-reply:
		s.log.Debug("session sweep done", zap.Int("removed", n))
	case <-time.After(5 * time.Second):
		s.log.Warn("session sweep did not report back")
	}
}
