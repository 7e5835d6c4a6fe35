package sync

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"campus-sync/internal/config"
	"campus-sync/internal/logger"
)

// Scheduler fires the coordinator on a coarse periodic interval. The
// connectivity edge covers the common case; this is the safety net for
// entries that failed while the device stayed online.
type Scheduler struct {
	cfg         config.SchedulerConfig
	coordinator *Coordinator
	cron        *cron.Cron
	entryID     cron.EntryID
}

func NewScheduler(cfg config.SchedulerConfig, coordinator *Coordinator) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		coordinator: coordinator,
		cron:        cron.New(),
	}
}

func (s *Scheduler) Start() {
	if !s.cfg.Enabled {
		logger.Log.Info("Scheduler is disabled")
		return
	}

	logger.Log.Info("Starting scheduler", zap.String("interval", s.cfg.Interval))

	id, err := s.cron.AddFunc(s.cfg.Interval, func() {
		if !s.coordinator.TriggerSync(TriggerSchedule) {
			logger.Log.Debug("Scheduled trigger dropped, sync already pending")
		}
	})

	if err != nil {
		logger.Log.Error("Failed to schedule job", zap.Error(err))
		return
	}

	s.entryID = id
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	logger.Log.Info("Stopped scheduler")
}
