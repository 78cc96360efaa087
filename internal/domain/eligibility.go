package domain

import "time"

// EligibilityReason explains an eligibility verdict.
type EligibilityReason string

const (
	ReasonAlreadySettled  EligibilityReason = "already_settled"
	ReasonWithinDueWindow EligibilityReason = "within_due_window"
	ReasonWindowExpired   EligibilityReason = "window_expired"
	ReasonNotYetDue       EligibilityReason = "not_yet_due"
	ReasonUnspecified     EligibilityReason = "unspecified"
)

// Eligibility is a derived view: whether a debt may receive a payment right
// now, and if not, why and when it next can.
type Eligibility struct {
	IsEligible       bool
	Reason           EligibilityReason
	NextEligibleDate *time.Time
}
