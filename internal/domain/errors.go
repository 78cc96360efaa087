package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NonAmortizingPaymentError is returned when a monthly payment does not cover
// the first period's interest, so the balance can never reach zero.
type NonAmortizingPaymentError struct {
	MonthlyPayment decimal.Decimal
	FirstInterest  decimal.Decimal
}

func (e *NonAmortizingPaymentError) Error() string {
	return fmt.Sprintf("monthly payment %s does not cover first period interest %s",
		e.MonthlyPayment.StringFixed(2), e.FirstInterest.StringFixed(2))
}

// NotEligibleError is returned when a payment is attempted outside the due
// window or after settlement.
type NotEligibleError struct {
	Reason EligibilityReason
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("payment not eligible: %s", e.Reason)
}

// InvalidAmountError is returned for a non-positive amount or one exceeding
// the debt's current balance.
type InvalidAmountError struct {
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid payment amount %s for balance %s",
		e.Amount.StringFixed(2), e.Balance.StringFixed(2))
}
