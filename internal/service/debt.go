package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"debtkeeper/internal/clients"
	"debtkeeper/internal/domain"
	"debtkeeper/internal/engine"
	"debtkeeper/internal/repository"
)

type DebtRepository interface {
	Create(ctx context.Context, d domain.Debt) error
	GetByID(ctx context.Context, id string) (domain.Debt, error)
	List(ctx context.Context, f repository.DebtsFilter) ([]domain.Debt, error)
	ListNonTerminal(ctx context.Context) ([]domain.Debt, error)
	UpdateDueDate(ctx context.Context, id string, dueDate time.Time, status domain.DebtStatus, now time.Time) error
}

// CreateDebtInput carries the caller-supplied fields of a new debt; identity,
// status and the running balance are derived here.
type CreateDebtInput struct {
	Name     string
	Creditor string
	Category string
	Notes    *string
	Color    string
	Type     domain.DebtType

	InitialAmount        decimal.Decimal
	InterestRate         decimal.Decimal
	MonthlyPaymentTarget decimal.Decimal

	StartDate time.Time
	DueDate   time.Time

	AutoPay           bool
	PaymentAccountID  *string
	PaymentDayOfMonth *int
}

// DebtView is a debt together with its derived payment eligibility,
// recomputed on every read.
type DebtView struct {
	Debt        domain.Debt
	Eligibility domain.Eligibility
}

type DebtService struct {
	repo DebtRepository
	ws   *clients.WebSocketClient
	log  *logrus.Logger
}

func NewDebtService(repo DebtRepository, ws *clients.WebSocketClient, log *logrus.Logger) *DebtService {
	return &DebtService{repo: repo, ws: ws, log: log}
}

func (s *DebtService) Create(ctx context.Context, ownerID int64, in CreateDebtInput, now time.Time) (domain.Debt, error) {
	if in.Name == "" {
		return domain.Debt{}, fmt.Errorf("debt name is required")
	}
	if !domain.ValidDebtType(in.Type) {
		return domain.Debt{}, fmt.Errorf("unknown debt type %q", in.Type)
	}
	if !in.InitialAmount.IsPositive() {
		return domain.Debt{}, fmt.Errorf("initial amount must be positive")
	}
	if in.InterestRate.IsNegative() {
		return domain.Debt{}, fmt.Errorf("interest rate must not be negative")
	}
	if !in.MonthlyPaymentTarget.IsPositive() {
		return domain.Debt{}, fmt.Errorf("monthly payment target must be positive")
	}
	if in.PaymentDayOfMonth != nil && (*in.PaymentDayOfMonth < 1 || *in.PaymentDayOfMonth > 31) {
		return domain.Debt{}, fmt.Errorf("payment day of month must be 1..31")
	}
	if in.AutoPay && in.PaymentAccountID == nil {
		return domain.Debt{}, fmt.Errorf("auto-pay requires a payment account")
	}

	d := domain.Debt{
		ID:                   uuid.NewString(),
		OwnerID:              ownerID,
		Name:                 in.Name,
		Creditor:             in.Creditor,
		Category:             in.Category,
		Notes:                in.Notes,
		Color:                in.Color,
		Type:                 in.Type,
		InitialAmount:        in.InitialAmount.Round(2),
		CurrentAmount:        in.InitialAmount.Round(2),
		InterestRate:         in.InterestRate,
		MonthlyPaymentTarget: in.MonthlyPaymentTarget.Round(2),
		StartDate:            in.StartDate,
		DueDate:              in.DueDate,
		Status:               engine.InitialStatus(in.DueDate, now),
		AutoPay:              in.AutoPay,
		PaymentAccountID:     in.PaymentAccountID,
		PaymentDayOfMonth:    in.PaymentDayOfMonth,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return domain.Debt{}, fmt.Errorf("create debt: %w", err)
	}

	s.log.WithFields(logrus.Fields{"debt_id": d.ID, "owner_id": ownerID, "status": d.Status}).
		Info("debt created")
	return d, nil
}

// Get returns an owner's debt with its eligibility view. Debts of other
// owners are indistinguishable from missing ones.
func (s *DebtService) Get(ctx context.Context, id string, ownerID int64, now time.Time) (DebtView, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DebtView{}, err
	}
	if d.OwnerID != ownerID {
		return DebtView{}, repository.ErrNotFound
	}

	return DebtView{Debt: d, Eligibility: engine.Evaluate(d, now)}, nil
}

func (s *DebtService) List(ctx context.Context, ownerID int64, f repository.DebtsFilter, now time.Time) ([]DebtView, error) {
	f.OwnerID = &ownerID

	debts, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	views := make([]DebtView, 0, len(debts))
	for _, d := range debts {
		views = append(views, DebtView{Debt: d, Eligibility: engine.Evaluate(d, now)})
	}
	return views, nil
}

// Schedule projects the amortization of a debt's current balance under its
// current terms.
func (s *DebtService) Schedule(ctx context.Context, id string, ownerID int64, now time.Time) (engine.ScheduleResult, error) {
	view, err := s.Get(ctx, id, ownerID, now)
	if err != nil {
		return engine.ScheduleResult{}, err
	}

	d := view.Debt
	return engine.Schedule(d.CurrentAmount, d.InterestRate, d.MonthlyPaymentTarget, now)
}

// RollForwardDueDates is the billing-cycle policy: every non-paid debt whose
// due window has lapsed is advanced by whole months until its due month is no
// longer in the past, and its status is recomputed for the new window. The
// lifecycle engine itself never moves due dates; this is the external process
// the overdue -> active transition presumes.
func (s *DebtService) RollForwardDueDates(ctx context.Context, now time.Time) error {
	debts, err := s.repo.ListNonTerminal(ctx)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}

	rolled := 0
	for _, d := range debts {
		if !engine.FirstOfMonth(d.DueDate).Before(engine.FirstOfMonth(now)) {
			continue
		}

		due := d.DueDate
		for engine.FirstOfMonth(due).Before(engine.FirstOfMonth(now)) {
			due = engine.AddMonths(due, 1)
		}

		next := d
		next.DueDate = due
		status := engine.NextStatus(next, now)

		if err := s.repo.UpdateDueDate(ctx, d.ID, due, status, now); err != nil {
			s.log.WithError(err).WithField("debt_id", d.ID).Warn("due date roll-forward failed")
			continue
		}
		rolled++

		if status != d.Status && s.ws != nil {
			_ = s.ws.NotifyDebtStatusChanged(ctx, d.OwnerID, d.ID, string(d.Status), string(status))
		}
	}

	if rolled > 0 {
		s.log.WithField("count", rolled).Info("due dates rolled forward")
	}
	return nil
}
