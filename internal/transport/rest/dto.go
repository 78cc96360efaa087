package rest

import (
	"time"

	"debtkeeper/internal/domain"
	"debtkeeper/internal/engine"
	"debtkeeper/internal/service"
)

type eligibilityJSON struct {
	IsEligible       bool    `json:"is_eligible"`
	Reason           string  `json:"reason"`
	NextEligibleDate *string `json:"next_eligible_date"`
}

type debtJSON struct {
	ID      string `json:"id"`
	OwnerID int64  `json:"owner_id"`

	Name     string  `json:"name"`
	Creditor string  `json:"creditor"`
	Category string  `json:"category"`
	Notes    *string `json:"notes"`
	Color    string  `json:"color"`
	Type     string  `json:"type"`

	InitialAmount        string `json:"initial_amount"`
	CurrentAmount        string `json:"current_amount"`
	InterestRate         string `json:"interest_rate"`
	MonthlyPaymentTarget string `json:"monthly_payment_target"`

	StartDate string `json:"start_date"`
	DueDate   string `json:"due_date"`
	DueMonth  string `json:"due_month"`
	Status    string `json:"status"`

	AutoPay           bool    `json:"auto_pay"`
	PaymentAccountID  *string `json:"payment_account_id"`
	PaymentDayOfMonth *int    `json:"payment_day_of_month"`

	Eligibility *eligibilityJSON `json:"eligibility,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toEligibilityJSON(e domain.Eligibility) *eligibilityJSON {
	out := &eligibilityJSON{
		IsEligible: e.IsEligible,
		Reason:     string(e.Reason),
	}
	if e.NextEligibleDate != nil {
		s := e.NextEligibleDate.Format("2006-01-02")
		out.NextEligibleDate = &s
	}
	return out
}

func toDebtJSON(d domain.Debt) debtJSON {
	return debtJSON{
		ID:                   d.ID,
		OwnerID:              d.OwnerID,
		Name:                 d.Name,
		Creditor:             d.Creditor,
		Category:             d.Category,
		Notes:                d.Notes,
		Color:                d.Color,
		Type:                 string(d.Type),
		InitialAmount:        d.InitialAmount.StringFixed(2),
		CurrentAmount:        d.CurrentAmount.StringFixed(2),
		InterestRate:         d.InterestRate.String(),
		MonthlyPaymentTarget: d.MonthlyPaymentTarget.StringFixed(2),
		StartDate:            d.StartDate.Format("2006-01-02"),
		DueDate:              d.DueDate.Format("2006-01-02"),
		DueMonth:             d.DueMonth(),
		Status:               string(d.Status),
		AutoPay:              d.AutoPay,
		PaymentAccountID:     d.PaymentAccountID,
		PaymentDayOfMonth:    d.PaymentDayOfMonth,
		CreatedAt:            d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            d.UpdatedAt.Format(time.RFC3339),
	}
}

func toDebtViewJSON(v service.DebtView) debtJSON {
	out := toDebtJSON(v.Debt)
	out.Eligibility = toEligibilityJSON(v.Eligibility)
	return out
}

type paymentJSON struct {
	ID     string `json:"id"`
	DebtID string `json:"debt_id"`

	Amount                string `json:"amount"`
	Principal             string `json:"principal"`
	Interest              string `json:"interest"`
	RemainingBalanceAfter string `json:"remaining_balance_after"`

	PaymentDate     string `json:"payment_date"`
	PaymentMonth    string `json:"payment_month"`
	SourceAccountID string `json:"source_account_id"`
	Status          string `json:"status"`

	CreatedAt string `json:"created_at"`
}

func toPaymentJSON(p domain.Payment) paymentJSON {
	return paymentJSON{
		ID:                    p.ID,
		DebtID:                p.DebtID,
		Amount:                p.Amount.StringFixed(2),
		Principal:             p.Principal.StringFixed(2),
		Interest:              p.Interest.StringFixed(2),
		RemainingBalanceAfter: p.RemainingBalanceAfter.StringFixed(2),
		PaymentDate:           p.PaymentDate.Format("2006-01-02"),
		PaymentMonth:          p.PaymentMonth(),
		SourceAccountID:       p.SourceAccountID,
		Status:                string(p.Status),
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
	}
}

type installmentJSON struct {
	Period    int    `json:"period"`
	Date      string `json:"date"`
	Payment   string `json:"payment"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Balance   string `json:"balance"`
}

type scheduleJSON struct {
	Installments  []installmentJSON `json:"installments"`
	DebtFreeDate  string            `json:"debt_free_date"`
	TotalInterest string            `json:"total_interest"`
	Truncated     bool              `json:"truncated"`
}

func toScheduleJSON(res engine.ScheduleResult) scheduleJSON {
	out := scheduleJSON{
		Installments:  make([]installmentJSON, 0, len(res.Installments)),
		DebtFreeDate:  res.DebtFreeDate.Format("2006-01-02"),
		TotalInterest: res.TotalInterest.StringFixed(2),
		Truncated:     res.Truncated,
	}
	for _, inst := range res.Installments {
		out.Installments = append(out.Installments, installmentJSON{
			Period:    inst.Period,
			Date:      inst.Date.Format("2006-01-02"),
			Payment:   inst.Payment.StringFixed(2),
			Principal: inst.Principal.StringFixed(2),
			Interest:  inst.Interest.StringFixed(2),
			Balance:   inst.Balance.StringFixed(2),
		})
	}
	return out
}

type statsJSON struct {
	TotalOutstanding       string         `json:"total_outstanding"`
	TotalMonthlyPayment    string         `json:"total_monthly_payment"`
	CountByStatus          map[string]int `json:"count_by_status"`
	ProjectedDebtFreeDate  *string        `json:"projected_debt_free_date"`
	TotalInterestRemaining string         `json:"total_interest_remaining"`
	Unprojectable          []string       `json:"unprojectable,omitempty"`
}

func toStatsJSON(s domain.DebtStats) statsJSON {
	counts := make(map[string]int, len(s.CountByStatus))
	for status, n := range s.CountByStatus {
		counts[string(status)] = n
	}

	out := statsJSON{
		TotalOutstanding:       s.TotalOutstanding.StringFixed(2),
		TotalMonthlyPayment:    s.TotalMonthlyPayment.StringFixed(2),
		CountByStatus:          counts,
		TotalInterestRemaining: s.TotalInterestRemaining.StringFixed(2),
		Unprojectable:          s.Unprojectable,
	}
	if s.ProjectedDebtFreeDate != nil {
		d := s.ProjectedDebtFreeDate.Format("2006-01-02")
		out.ProjectedDebtFreeDate = &d
	}
	return out
}
