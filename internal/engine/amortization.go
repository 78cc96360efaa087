package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"debtkeeper/internal/domain"
)

// maxPeriods is the hard cap on schedule length: 30 years of monthly
// installments.
const maxPeriods = 360

var monthsPerYearPct = decimal.NewFromInt(1200)

// MonthlyRate converts an annual nominal percentage rate to a monthly
// fraction (12% -> 0.01).
func MonthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(monthsPerYearPct)
}

// Installment is one projected period of an amortization schedule.
// Principal and Interest sum to Payment exactly; Balance is the amount still
// owed after the installment is applied.
type Installment struct {
	Period    int
	Date      time.Time
	Payment   decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Balance   decimal.Decimal
}

// ScheduleResult is an ordered amortization schedule with its derived
// reductions. Truncated is set when the 360-period cap was reached before
// the balance hit zero.
type ScheduleResult struct {
	Installments  []Installment
	DebtFreeDate  time.Time
	TotalInterest decimal.Decimal
	Truncated     bool
}

// Schedule projects the amortization of principal under a fixed annual
// nominal rate and fixed monthly payment, starting at asOf. Interest for
// each period is rounded to cents before the principal split, so every
// installment conserves the payment amount exactly.
//
// A payment that does not cover the first period's interest can never
// amortize and yields a NonAmortizingPaymentError. Reaching the period cap
// with a balance left is not an error: the schedule is returned with
// Truncated set and the caller decides what a partial projection is worth.
func Schedule(principal, annualRatePct, monthlyPayment decimal.Decimal, asOf time.Time) (ScheduleResult, error) {
	res := ScheduleResult{TotalInterest: decimal.Zero, DebtFreeDate: asOf}
	balance := principal.Round(2)
	if !balance.IsPositive() {
		return res, nil
	}

	r := MonthlyRate(annualRatePct)

	for k := 1; k <= maxPeriods; k++ {
		interest := balance.Mul(r).Round(2)
		if k == 1 && monthlyPayment.Cmp(interest) <= 0 {
			return ScheduleResult{}, &domain.NonAmortizingPaymentError{
				MonthlyPayment: monthlyPayment,
				FirstInterest:  interest,
			}
		}

		paid := monthlyPayment.Sub(interest)
		if paid.Cmp(balance) > 0 {
			paid = balance
		}
		balance = balance.Sub(paid)

		res.Installments = append(res.Installments, Installment{
			Period:    k,
			Date:      AddMonths(asOf, k-1),
			Payment:   paid.Add(interest),
			Principal: paid,
			Interest:  interest,
			Balance:   balance,
		})
		res.TotalInterest = res.TotalInterest.Add(interest)

		if balance.IsZero() {
			break
		}
	}

	res.Truncated = balance.IsPositive()
	res.DebtFreeDate = res.Installments[len(res.Installments)-1].Date
	return res, nil
}
