// Package scheduler runs the periodic notification sweeps on gocron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/config"
	"github.com/helpdeskpro/helpdesk-service/internal/service"
)

// Manager owns the gocron scheduler and the three sweeps. Start is
// idempotent: the started flag guards against registering the jobs
// twice in one process.
type Manager struct {
	scheduler gocron.Scheduler
	sweeps    *service.SweepService
	cfg       config.SchedulerConfig
	logger    *zap.Logger

	started   bool
	startedMu sync.Mutex
}

// NewManager creates a scheduler manager.
func NewManager(sweeps *service.SweepService, cfg config.SchedulerConfig, logger *zap.Logger) (*Manager, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{
		scheduler: sched,
		sweeps:    sweeps,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the sweeps and begins running them. Calling Start
// again is a no-op.
func (m *Manager) Start() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		m.logger.Debug("scheduler already started")
		return nil
	}

	unassignedEvery := time.Duration(m.cfg.UnassignedSweepHrs) * time.Hour
	if unassignedEvery <= 0 {
		unassignedEvery = 2 * time.Hour
	}
	surveyHour := m.cfg.SurveyHour
	if surveyHour < 0 || surveyHour > 23 {
		surveyHour = 10
	}

	if _, err := m.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() { m.runSweep("stale-ticket-reminder", m.sweeps.RemindStaleTickets) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("stale-ticket-reminder"),
	); err != nil {
		return err
	}

	if _, err := m.scheduler.NewJob(
		gocron.CronJob(fmt.Sprintf("0 %d * * *", surveyHour), false),
		gocron.NewTask(func() { m.runSweep("closure-survey", m.sweeps.SendClosureSurveys) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("closure-survey"),
	); err != nil {
		return err
	}

	if _, err := m.scheduler.NewJob(
		gocron.DurationJob(unassignedEvery),
		gocron.NewTask(func() { m.runSweep("unassigned-alert", m.sweeps.AlertUnassignedTickets) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("unassigned-alert"),
	); err != nil {
		return err
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Info("notification sweeps scheduled",
		zap.Int("survey_hour", surveyHour),
		zap.Duration("unassigned_interval", unassignedEvery))
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false
	return m.scheduler.Shutdown()
}

func (m *Manager) runSweep(name string, sweep func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	count, err := sweep(ctx)
	if err != nil {
		m.logger.Error("sweep failed",
			zap.String("sweep", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	if count > 0 {
		m.logger.Info("sweep completed",
			zap.String("sweep", name),
			zap.Int("notified", count),
			zap.Duration("duration", time.Since(start)))
	} else {
		m.logger.Debug("sweep completed with nothing to do",
			zap.String("sweep", name))
	}
}
