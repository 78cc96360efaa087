package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"debtkeeper/internal/domain"
	"debtkeeper/internal/repository"
	"debtkeeper/internal/service"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type CreateDebtRequest struct {
	Name     string  `json:"name"`
	Creditor string  `json:"creditor"`
	Category string  `json:"category"`
	Notes    *string `json:"notes"`
	Color    string  `json:"color"`
	Type     string  `json:"type"`

	InitialAmount        decimal.Decimal `json:"initial_amount"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	MonthlyPaymentTarget decimal.Decimal `json:"monthly_payment_target"`

	StartDate string `json:"start_date"`
	DueDate   string `json:"due_date"`

	AutoPay           bool    `json:"auto_pay"`
	PaymentAccountID  *string `json:"payment_account_id"`
	PaymentDayOfMonth *int    `json:"payment_day_of_month"`
}

func ValidateCreateDebtRequest(r *http.Request) (*CreateDebtRequest, error) {
	var req CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if !domain.ValidDebtType(domain.DebtType(req.Type)) {
		return nil, &ValidationError{Field: "type", Message: "unknown debt type"}
	}
	if !req.InitialAmount.IsPositive() {
		return nil, &ValidationError{Field: "initial_amount", Message: "initial_amount must be positive"}
	}
	if req.InterestRate.IsNegative() {
		return nil, &ValidationError{Field: "interest_rate", Message: "interest_rate must not be negative"}
	}
	if !req.MonthlyPaymentTarget.IsPositive() {
		return nil, &ValidationError{Field: "monthly_payment_target", Message: "monthly_payment_target must be positive"}
	}
	if _, err := parseDate(req.StartDate); err != nil {
		return nil, &ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"}
	}
	if _, err := parseDate(req.DueDate); err != nil {
		return nil, &ValidationError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"}
	}

	return &req, nil
}

func (r *CreateDebtRequest) ToInput() service.CreateDebtInput {
	startDate, _ := parseDate(r.StartDate)
	dueDate, _ := parseDate(r.DueDate)

	return service.CreateDebtInput{
		Name:                 r.Name,
		Creditor:             r.Creditor,
		Category:             r.Category,
		Notes:                r.Notes,
		Color:                r.Color,
		Type:                 domain.DebtType(r.Type),
		InitialAmount:        r.InitialAmount,
		InterestRate:         r.InterestRate,
		MonthlyPaymentTarget: r.MonthlyPaymentTarget,
		StartDate:            startDate,
		DueDate:              dueDate,
		AutoPay:              r.AutoPay,
		PaymentAccountID:     r.PaymentAccountID,
		PaymentDayOfMonth:    r.PaymentDayOfMonth,
	}
}

type ApplyPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	SourceAccountID string          `json:"source_account_id"`
}

func ValidateApplyPaymentRequest(r *http.Request) (*ApplyPaymentRequest, error) {
	var req ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if req.SourceAccountID == "" {
		return nil, &ValidationError{Field: "source_account_id", Message: "source_account_id is required"}
	}

	return &req, nil
}

// DebtsFilterFromQuery builds the list filter from optional ?status= and
// ?type= query parameters.
func DebtsFilterFromQuery(r *http.Request) (repository.DebtsFilter, error) {
	var f repository.DebtsFilter

	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.DebtStatus(s)
		switch status {
		case domain.DebtStatusFuture, domain.DebtStatusActive, domain.DebtStatusOverdue, domain.DebtStatusPaid:
			f.Status = &status
		default:
			return f, &ValidationError{Field: "status", Message: "unknown status"}
		}
	}

	if t := r.URL.Query().Get("type"); t != "" {
		debtType := domain.DebtType(t)
		if !domain.ValidDebtType(debtType) {
			return f, &ValidationError{Field: "type", Message: "unknown debt type"}
		}
		f.Type = &debtType
	}

	return f, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
