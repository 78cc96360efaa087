package service

import (
	"context"
	"testing"
	"time"

	"debtkeeper/internal/domain"
)

func TestReconcileService_Run(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	debts := []domain.Debt{
		{
			ID:            "arriving",
			OwnerID:       1,
			CurrentAmount: dec(t, "100.00"),
			DueDate:       time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
			Status:        domain.DebtStatusFuture,
		},
		{
			ID:            "lapsing",
			OwnerID:       1,
			CurrentAmount: dec(t, "100.00"),
			DueDate:       time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
			Status:        domain.DebtStatusActive,
		},
		{
			ID:            "steady",
			OwnerID:       1,
			CurrentAmount: dec(t, "100.00"),
			DueDate:       time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC),
			Status:        domain.DebtStatusActive,
		},
	}

	repo := newFakeDebtRepo(debts...)
	svc := NewReconcileService(repo, nil, testLogger())

	if err := svc.Run(context.Background(), now); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := map[string]domain.DebtStatus{
		"arriving": domain.DebtStatusActive,
		"lapsing":  domain.DebtStatusOverdue,
		"steady":   domain.DebtStatusActive,
	}
	for id, status := range want {
		d, _ := repo.GetByID(context.Background(), id)
		if d.Status != status {
			t.Errorf("%s: status = %q, want %q", id, d.Status, status)
		}
	}
}

func TestReconcileService_Run_Idempotent(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	repo := newFakeDebtRepo(domain.Debt{
		ID:            "d1",
		OwnerID:       1,
		CurrentAmount: dec(t, "100.00"),
		DueDate:       time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		Status:        domain.DebtStatusActive,
	})
	svc := NewReconcileService(repo, nil, testLogger())

	for i := 0; i < 3; i++ {
		if err := svc.Run(context.Background(), now); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	d, _ := repo.GetByID(context.Background(), "d1")
	if d.Status != domain.DebtStatusOverdue {
		t.Errorf("status = %q, want overdue", d.Status)
	}
}
