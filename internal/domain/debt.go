package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DebtStatus string

const (
	DebtStatusFuture  DebtStatus = "future"
	DebtStatusActive  DebtStatus = "active"
	DebtStatusOverdue DebtStatus = "overdue"
	DebtStatusPaid    DebtStatus = "paid"
)

type DebtType string

const (
	DebtTypePersonal   DebtType = "personal"
	DebtTypeMortgage   DebtType = "mortgage"
	DebtTypeCar        DebtType = "car"
	DebtTypeEducation  DebtType = "education"
	DebtTypeCreditCard DebtType = "credit_card"
	DebtTypeMedical    DebtType = "medical"
	DebtTypeBusiness   DebtType = "business"
	DebtTypeOther      DebtType = "other"
)

// ValidDebtType reports whether t belongs to the closed set of debt types.
func ValidDebtType(t DebtType) bool {
	switch t {
	case DebtTypePersonal, DebtTypeMortgage, DebtTypeCar, DebtTypeEducation,
		DebtTypeCreditCard, DebtTypeMedical, DebtTypeBusiness, DebtTypeOther:
		return true
	}
	return false
}

// Debt is a single owed obligation. Monetary fields are fixed-scale decimals;
// CurrentAmount only ever decreases through the payment ledger.
type Debt struct {
	ID      string
	OwnerID int64

	Name     string
	Creditor string
	Category string
	Notes    *string
	Color    string
	Type     DebtType

	InitialAmount        decimal.Decimal
	CurrentAmount        decimal.Decimal
	InterestRate         decimal.Decimal // annual nominal percent
	MonthlyPaymentTarget decimal.Decimal

	StartDate time.Time
	DueDate   time.Time

	Status DebtStatus

	AutoPay           bool
	PaymentAccountID  *string
	PaymentDayOfMonth *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueMonth is the YYYY-MM calendar month of DueDate. It is always derived,
// never stored or mutated independently.
func (d Debt) DueMonth() string {
	return d.DueDate.Format("2006-01")
}

// Settled reports whether the balance has reached zero.
func (d Debt) Settled() bool {
	return !d.CurrentAmount.IsPositive()
}
