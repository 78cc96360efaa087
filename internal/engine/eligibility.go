package engine

import (
	"time"

	"debtkeeper/internal/domain"
)

// Evaluate decides whether a debt may receive a payment at now. A payment is
// accepted only during the calendar month of the debt's due date, and only
// while a balance remains. The rules are checked in order; the final
// Unspecified arm is a defensive fallback that the three date relations make
// unreachable.
func Evaluate(d domain.Debt, now time.Time) domain.Eligibility {
	switch {
	case d.Settled():
		return domain.Eligibility{Reason: domain.ReasonAlreadySettled}
	case SameMonth(d.DueDate, now):
		return domain.Eligibility{IsEligible: true, Reason: domain.ReasonWithinDueWindow}
	case d.DueDate.Before(now):
		// past-due; needs the billing cycle (or a human) to roll the window
		return domain.Eligibility{Reason: domain.ReasonWindowExpired}
	case d.DueDate.After(now):
		next := FirstOfMonth(d.DueDate)
		return domain.Eligibility{Reason: domain.ReasonNotYetDue, NextEligibleDate: &next}
	default:
		return domain.Eligibility{Reason: domain.ReasonUnspecified}
	}
}
