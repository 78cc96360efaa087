package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"debtkeeper/internal/domain"
)

type AutoPayRepository interface {
	ListAutoPayDue(ctx context.Context, dayOfMonth int) ([]domain.Debt, error)
}

// AutoPayService submits the scheduled payment for debts configured with
// auto-pay on today's day of month. Days 29..31 fire on the last day of
// shorter months.
type AutoPayService struct {
	repo     AutoPayRepository
	payments *PaymentService
	log      *logrus.Logger
}

func NewAutoPayService(repo AutoPayRepository, payments *PaymentService, log *logrus.Logger) *AutoPayService {
	return &AutoPayService{repo: repo, payments: payments, log: log}
}

func (s *AutoPayService) Run(ctx context.Context, now time.Time) error {
	days := []int{now.Day()}
	if now.AddDate(0, 0, 1).Day() == 1 {
		// Last day of the month also covers the days this month doesn't have.
		for day := now.Day() + 1; day <= 31; day++ {
			days = append(days, day)
		}
	}

	var due []domain.Debt
	for _, day := range days {
		debts, err := s.repo.ListAutoPayDue(ctx, day)
		if err != nil {
			return err
		}
		due = append(due, debts...)
	}

	applied, skipped := 0, 0
	for _, d := range due {
		if d.PaymentAccountID == nil {
			s.log.WithField("debt_id", d.ID).Warn("auto-pay debt has no payment account")
			skipped++
			continue
		}

		amount := decimal.Min(d.MonthlyPaymentTarget, d.CurrentAmount)
		_, _, err := s.payments.Apply(ctx, d.ID, d.OwnerID, amount, *d.PaymentAccountID, now)

		var notEligible *domain.NotEligibleError
		if errors.As(err, &notEligible) {
			s.log.WithFields(logrus.Fields{
				"debt_id": d.ID,
				"reason":  notEligible.Reason,
			}).Warn("auto-pay skipped ineligible debt")
			skipped++
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("debt_id", d.ID).Error("auto-pay failed")
			skipped++
			continue
		}
		applied++
	}

	s.log.WithFields(logrus.Fields{
		"due":     len(due),
		"applied": applied,
		"skipped": skipped,
	}).Info("auto-pay run finished")
	return nil
}
