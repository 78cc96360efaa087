package engine

import (
	"time"

	"debtkeeper/internal/domain"
)

// InitialStatus derives the status of a freshly created debt: active when its
// due month is the current month, future otherwise.
func InitialStatus(dueDate, now time.Time) domain.DebtStatus {
	if SameMonth(dueDate, now) {
		return domain.DebtStatusActive
	}
	return domain.DebtStatusFuture
}

// NextStatus computes a debt's lifecycle status at now. It is idempotent and
// never regresses the terminal paid state. A zero balance dominates every
// other rule; otherwise transitions follow the due window:
//
//	future  -> active  when the due month arrives
//	active  -> overdue when the due date passes without the window rolling
//	overdue -> active  when the (externally advanced) due month arrives again
func NextStatus(d domain.Debt, now time.Time) domain.DebtStatus {
	if d.Status == domain.DebtStatusPaid || d.Settled() {
		return domain.DebtStatusPaid
	}

	switch d.Status {
	case domain.DebtStatusFuture:
		if SameMonth(d.DueDate, now) {
			return domain.DebtStatusActive
		}
	case domain.DebtStatusActive:
		if now.After(d.DueDate) && !SameMonth(d.DueDate, now) {
			return domain.DebtStatusOverdue
		}
	case domain.DebtStatusOverdue:
		if SameMonth(d.DueDate, now) {
			return domain.DebtStatusActive
		}
	}

	return d.Status
}
