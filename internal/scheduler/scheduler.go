package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/config"
	"github.com/dmlopes/processamento/internal/service/processamento"
	"github.com/dmlopes/processamento/pkg/clients/notify"
)

const dateLayout = "2006-01-02"

// Scheduler runs the daily consolidation on a cron schedule. It drives the
// same two-phase entry point the manual "Calcular Processamento" action uses;
// there is no separate code path for automated runs.
type Scheduler struct {
	cron          *cron.Cron
	processingSvc *processamento.Service
	notifier      notify.Client
	cfg           config.ProcessingConfig
	location      *time.Location
	logger        *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil when no
// webhook is configured.
func NewScheduler(cfg config.ProcessingConfig, processingSvc *processamento.Service, notifier notify.Client, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(location)),
		processingSvc: processingSvc,
		notifier:      notifier,
		cfg:           cfg,
		location:      location,
		logger:        logger,
	}, nil
}

// Start registers the daily consolidation job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyConsolidation); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailyConsolidation() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dateKey := time.Now().In(s.location).Format(dateLayout)
	session := s.processingSvc.NewSession()

	proposal, err := s.processingSvc.Propose(ctx, session, dateKey)
	if err != nil {
		if errors.Is(err, processamento.ErrNoData) {
			s.logger.Info("no production data for today, nothing to consolidate", zap.String("date", dateKey))
			return
		}
		s.logger.Error("failed to evaluate consolidation", zap.String("date", dateKey), zap.Error(err))
		return
	}

	switch {
	case proposal.Blocked:
		// Historical dates must be backfilled before today can be consolidated;
		// that decision stays with the operator.
		s.logger.Warn("consolidation blocked by unprocessed backlog",
			zap.String("date", dateKey),
			zap.Int("pending", len(proposal.Backlog)))
	case proposal.NeedsConfirmation:
		// A scheduled run never auto-confirms a half-entered day.
		s.logger.Warn("skipping scheduled consolidation, shift missing",
			zap.String("date", dateKey),
			zap.String("missing_shift", proposal.MissingShift))
	default:
		result, err := s.processingSvc.Run(ctx, session, dateKey, false)
		if err != nil {
			s.logger.Error("scheduled consolidation failed", zap.String("date", dateKey), zap.Error(err))
			return
		}
		s.logger.Info("scheduled consolidation completed",
			zap.String("date", dateKey),
			zap.Float64("kg_total", result.ProducedTotalKg))

		if s.notifier != nil {
			if err := s.notifier.NotifyConsolidation(ctx, result); err != nil {
				s.logger.Error("failed to notify consolidation", zap.Error(err))
			}
		}
	}
}
