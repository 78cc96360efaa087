package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"debtkeeper/internal/config"
	"debtkeeper/internal/service"
)

// Scheduler runs the three background passes on cron schedules: nightly
// status reconciliation, monthly due-date roll-forward and the daily auto-pay
// sweep.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

func New(
	cfg config.SchedulerConfig,
	reconcile *service.ReconcileService,
	debts *service.DebtService,
	autopay *service.AutoPayService,
	log *logrus.Logger,
) (*Scheduler, error) {
	c := cron.New()

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context, now time.Time) error
	}{
		{"reconcile", cfg.ReconcileSpec, reconcile.Run},
		{"roll_forward", cfg.RollForwardSpec, debts.RollForwardDueDates},
		{"auto_pay", cfg.AutoPaySpec, autopay.Run},
	}

	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			if err := job.run(ctx, time.Now()); err != nil {
				log.WithError(err).WithField("job", job.name).Error("scheduled job failed")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("bad cron spec for %s: %w", job.name, err)
		}
	}

	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}
