package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"debtkeeper/internal/domain"
)

// Aggregate folds a set of debts into portfolio statistics. It never mutates
// its inputs and is safe to call at any frequency. The projected debt-free
// date is the latest schedule end over all non-paid debts, computed from each
// debt's current balance and terms; debts whose schedule cannot converge are
// reported in Unprojectable and skipped in the projections.
func Aggregate(debts []domain.Debt, now time.Time) domain.DebtStats {
	stats := domain.DebtStats{
		TotalOutstanding:       decimal.Zero,
		TotalMonthlyPayment:    decimal.Zero,
		TotalInterestRemaining: decimal.Zero,
		CountByStatus:          make(map[domain.DebtStatus]int),
	}

	for _, d := range debts {
		stats.CountByStatus[d.Status]++
		stats.TotalOutstanding = stats.TotalOutstanding.Add(d.CurrentAmount)

		if d.Status == domain.DebtStatusPaid {
			continue
		}
		stats.TotalMonthlyPayment = stats.TotalMonthlyPayment.Add(d.MonthlyPaymentTarget)

		sched, err := Schedule(d.CurrentAmount, d.InterestRate, d.MonthlyPaymentTarget, now)
		if err != nil || sched.Truncated {
			stats.Unprojectable = append(stats.Unprojectable, d.ID)
			continue
		}

		stats.TotalInterestRemaining = stats.TotalInterestRemaining.Add(sched.TotalInterest)
		if stats.ProjectedDebtFreeDate == nil || sched.DebtFreeDate.After(*stats.ProjectedDebtFreeDate) {
			end := sched.DebtFreeDate
			stats.ProjectedDebtFreeDate = &end
		}
	}

	return stats
}
