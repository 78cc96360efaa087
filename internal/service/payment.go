package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"debtkeeper/internal/clients"
	"debtkeeper/internal/domain"
	"debtkeeper/internal/engine"
	"debtkeeper/internal/repository"
)

type LedgerRepository interface {
	ApplyPayment(ctx context.Context, debtID string, apply func(domain.Debt) (domain.Debt, domain.Payment, error)) (domain.Debt, domain.Payment, error)
}

type PaymentRepository interface {
	ListByDebt(ctx context.Context, debtID string) ([]domain.Payment, error)
}

// StatsInvalidator drops cached portfolio statistics after a mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, ownerID int64)
}

type PaymentService struct {
	ledger   LedgerRepository
	payments PaymentRepository
	debts    DebtRepository
	stats    StatsInvalidator
	ws       *clients.WebSocketClient
	log      *logrus.Logger
}

func NewPaymentService(
	ledger LedgerRepository,
	payments PaymentRepository,
	debts DebtRepository,
	stats StatsInvalidator,
	ws *clients.WebSocketClient,
	log *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		ledger:   ledger,
		payments: payments,
		debts:    debts,
		stats:    stats,
		ws:       ws,
		log:      log,
	}
}

// Apply records a payment against an owner's debt. The eligibility check,
// balance mutation and ledger insert run in one transaction on the debt row;
// a failed precondition leaves everything untouched.
func (s *PaymentService) Apply(
	ctx context.Context,
	debtID string,
	ownerID int64,
	amount decimal.Decimal,
	sourceAccountID string,
	now time.Time,
) (domain.Debt, domain.Payment, error) {
	prevStatus := domain.DebtStatus("")

	updated, payment, err := s.ledger.ApplyPayment(ctx, debtID, func(d domain.Debt) (domain.Debt, domain.Payment, error) {
		if d.OwnerID != ownerID {
			return domain.Debt{}, domain.Payment{}, repository.ErrNotFound
		}
		prevStatus = d.Status

		next, p, err := engine.ApplyPayment(d, amount.Round(2), sourceAccountID, now)
		if err != nil {
			return domain.Debt{}, domain.Payment{}, err
		}
		p.ID = uuid.NewString()
		return next, p, nil
	})
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, ownerID)
	}
	if s.ws != nil {
		_ = s.ws.NotifyPaymentApplied(ctx, ownerID, updated.ID, payment.ID,
			updated.CurrentAmount.StringFixed(2), string(updated.Status))
		if updated.Status != prevStatus {
			_ = s.ws.NotifyDebtStatusChanged(ctx, ownerID, updated.ID, string(prevStatus), string(updated.Status))
		}
	}

	s.log.WithFields(logrus.Fields{
		"debt_id":    updated.ID,
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
		"principal":  payment.Principal.StringFixed(2),
		"interest":   payment.Interest.StringFixed(2),
		"remaining":  updated.CurrentAmount.StringFixed(2),
		"status":     updated.Status,
	}).Info("payment applied")

	return updated, payment, nil
}

// List returns a debt's payment history, oldest first.
func (s *PaymentService) List(ctx context.Context, debtID string, ownerID int64) ([]domain.Payment, error) {
	d, err := s.debts.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}

	return s.payments.ListByDebt(ctx, debtID)
}
