package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"debtkeeper/internal/domain"
	"debtkeeper/internal/repository"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeDebtRepo is an in-memory stand-in for the postgres repositories. It
// implements DebtRepository, ReconcileRepository, AutoPayRepository and the
// ledger/payment interfaces, so one instance backs a whole service graph.
type fakeDebtRepo struct {
	mu       sync.Mutex
	debts    map[string]domain.Debt
	payments map[string][]domain.Payment
}

func newFakeDebtRepo(debts ...domain.Debt) *fakeDebtRepo {
	r := &fakeDebtRepo{
		debts:    make(map[string]domain.Debt),
		payments: make(map[string][]domain.Payment),
	}
	for _, d := range debts {
		r.debts[d.ID] = d
	}
	return r
}

func (r *fakeDebtRepo) Create(ctx context.Context, d domain.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debts[d.ID] = d
	return nil
}

func (r *fakeDebtRepo) GetByID(ctx context.Context, id string) (domain.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[id]
	if !ok {
		return domain.Debt{}, repository.ErrNotFound
	}
	return d, nil
}

func (r *fakeDebtRepo) List(ctx context.Context, f repository.DebtsFilter) ([]domain.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Debt
	for _, d := range r.debts {
		if f.OwnerID != nil && d.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.Type != nil && d.Type != *f.Type {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDebtRepo) ListNonTerminal(ctx context.Context) ([]domain.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Debt
	for _, d := range r.debts {
		if d.Status != domain.DebtStatusPaid {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDebtRepo) ListAutoPayDue(ctx context.Context, dayOfMonth int) ([]domain.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Debt
	for _, d := range r.debts {
		if !d.AutoPay || d.Status == domain.DebtStatusPaid {
			continue
		}
		if d.PaymentDayOfMonth == nil || *d.PaymentDayOfMonth != dayOfMonth {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDebtRepo) UpdateStatus(ctx context.Context, id string, from, to domain.DebtStatus, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[id]
	if !ok || d.Status != from {
		return repository.ErrStaleDebt
	}
	d.Status = to
	d.UpdatedAt = now
	r.debts[id] = d
	return nil
}

func (r *fakeDebtRepo) UpdateDueDate(ctx context.Context, id string, dueDate time.Time, status domain.DebtStatus, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.DueDate = dueDate
	d.Status = status
	d.UpdatedAt = now
	r.debts[id] = d
	return nil
}

func (r *fakeDebtRepo) ApplyPayment(ctx context.Context, debtID string, apply func(domain.Debt) (domain.Debt, domain.Payment, error)) (domain.Debt, domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[debtID]
	if !ok {
		return domain.Debt{}, domain.Payment{}, repository.ErrNotFound
	}
	updated, payment, err := apply(d)
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}
	r.debts[debtID] = updated
	r.payments[debtID] = append(r.payments[debtID], payment)
	return updated, payment, nil
}

func (r *fakeDebtRepo) ListByDebt(ctx context.Context, debtID string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[debtID], nil
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls []int64
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, ownerID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ownerID)
}
