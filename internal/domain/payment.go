package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is an immutable ledger entry. Principal and Interest always sum to
// Amount exactly at cent precision.
type Payment struct {
	ID     string
	DebtID string

	Amount                decimal.Decimal
	Principal             decimal.Decimal
	Interest              decimal.Decimal
	RemainingBalanceAfter decimal.Decimal

	PaymentDate     time.Time
	SourceAccountID string
	Status          PaymentStatus

	CreatedAt time.Time
}

// PaymentMonth is the YYYY-MM calendar month of PaymentDate.
func (p Payment) PaymentMonth() string {
	return p.PaymentDate.Format("2006-01")
}
