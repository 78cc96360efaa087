package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStats is a portfolio-level fold over a set of debts.
type DebtStats struct {
	TotalOutstanding       decimal.Decimal
	TotalMonthlyPayment    decimal.Decimal
	CountByStatus          map[DebtStatus]int
	ProjectedDebtFreeDate  *time.Time
	TotalInterestRemaining decimal.Decimal

	// Unprojectable lists debts whose schedule cannot converge under their
	// current payment and rate; they are excluded from the projections above.
	Unprojectable []string
}
