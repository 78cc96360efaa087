package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"debtkeeper/internal/domain"
)

// ApplyPayment validates and applies a payment against a debt snapshot,
// returning the updated snapshot and the ledger entry. The period's interest
// is taken first (capped at the amount paid), the rest reduces principal,
// and the three figures conserve the amount exactly at cent precision.
//
// On any precondition failure the input debt is untouched and a typed error
// (NotEligibleError, InvalidAmountError) is returned. The payment's ID is
// left empty; the orchestrating layer assigns it.
func ApplyPayment(d domain.Debt, amount decimal.Decimal, sourceAccountID string, now time.Time) (domain.Debt, domain.Payment, error) {
	if elig := Evaluate(d, now); !elig.IsEligible {
		return domain.Debt{}, domain.Payment{}, &domain.NotEligibleError{Reason: elig.Reason}
	}
	if !amount.IsPositive() || amount.Cmp(d.CurrentAmount) > 0 {
		return domain.Debt{}, domain.Payment{}, &domain.InvalidAmountError{
			Amount:  amount,
			Balance: d.CurrentAmount,
		}
	}

	interest := d.CurrentAmount.Mul(MonthlyRate(d.InterestRate)).Round(2)
	if interest.Cmp(amount) > 0 {
		interest = amount
	}
	principal := amount.Sub(interest)
	remaining := d.CurrentAmount.Sub(principal)

	updated := d
	updated.CurrentAmount = remaining
	updated.Status = NextStatus(updated, now)
	updated.UpdatedAt = now

	payment := domain.Payment{
		DebtID:                d.ID,
		Amount:                amount,
		Principal:             principal,
		Interest:              interest,
		RemainingBalanceAfter: remaining,
		PaymentDate:           now,
		SourceAccountID:       sourceAccountID,
		Status:                domain.PaymentStatusCompleted,
		CreatedAt:             now,
	}

	return updated, payment, nil
}
