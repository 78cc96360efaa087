package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"debtkeeper/internal/clients"
	"debtkeeper/internal/domain"
	"debtkeeper/internal/engine"
	"debtkeeper/internal/repository"
)

type ReconcileRepository interface {
	ListNonTerminal(ctx context.Context) ([]domain.Debt, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.DebtStatus, now time.Time) error
}

// ReconcileService moves stored statuses to where the lifecycle rules say
// they should be for the current clock. Statuses are derived state; this pass
// only exists so that list queries and notifications see them without
// recomputing on every read.
type ReconcileService struct {
	repo ReconcileRepository
	ws   *clients.WebSocketClient
	log  *logrus.Logger
}

func NewReconcileService(repo ReconcileRepository, ws *clients.WebSocketClient, log *logrus.Logger) *ReconcileService {
	return &ReconcileService{repo: repo, ws: ws, log: log}
}

func (s *ReconcileService) Run(ctx context.Context, now time.Time) error {
	debts, err := s.repo.ListNonTerminal(ctx)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}

	transitions := 0
	for _, d := range debts {
		next := engine.NextStatus(d, now)
		if next == d.Status {
			continue
		}

		err := s.repo.UpdateStatus(ctx, d.ID, d.Status, next, now)
		if errors.Is(err, repository.ErrStaleDebt) {
			// A payment or roll-forward beat us to the row; it already
			// stored a status computed from fresher state.
			s.log.WithField("debt_id", d.ID).Debug("reconcile skipped stale debt")
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("debt_id", d.ID).Warn("status update failed")
			continue
		}
		transitions++

		if s.ws != nil {
			_ = s.ws.NotifyDebtStatusChanged(ctx, d.OwnerID, d.ID, string(d.Status), string(next))
		}
	}

	s.log.WithFields(logrus.Fields{
		"checked":     len(debts),
		"transitions": transitions,
	}).Info("status reconciliation finished")
	return nil
}
