package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"debtkeeper/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSchedule_ReferenceExample(t *testing.T) {
	asOf := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	res, err := Schedule(dec("1200.00"), dec("12"), dec("106.00"), asOf)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	first := res.Installments[0]
	if !first.Interest.Equal(dec("12.00")) {
		t.Errorf("first interest = %s, want 12.00", first.Interest)
	}
	if !first.Principal.Equal(dec("94.00")) {
		t.Errorf("first principal = %s, want 94.00", first.Principal)
	}
	if !first.Balance.Equal(dec("1106.00")) {
		t.Errorf("first remaining = %s, want 1106.00", first.Balance)
	}

	if n := len(res.Installments); n != 13 {
		t.Errorf("schedule length = %d, want 13", n)
	}
	if !res.TotalInterest.Equal(dec("79.93")) {
		t.Errorf("total interest = %s, want 79.93", res.TotalInterest)
	}
	if res.Truncated {
		t.Error("schedule unexpectedly truncated")
	}

	last := res.Installments[len(res.Installments)-1]
	if !last.Balance.IsZero() {
		t.Errorf("final balance = %s, want 0", last.Balance)
	}
	if !res.DebtFreeDate.Equal(last.Date) {
		t.Errorf("debt free date = %v, want %v", res.DebtFreeDate, last.Date)
	}
}

func TestSchedule_ConvergenceAndConservation(t *testing.T) {
	asOf := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		principal string
		rate      string
		payment   string
	}{
		{"1200.00", "12", "106.00"},
		{"500.00", "0", "50.00"},
		{"10000.00", "24", "450.00"},
		{"99.99", "5.5", "10.00"},
		{"35000.00", "3.25", "650.00"},
		{"0.01", "18", "5.00"},
	}

	for _, tc := range cases {
		res, err := Schedule(dec(tc.principal), dec(tc.rate), dec(tc.payment), asOf)
		if err != nil {
			t.Fatalf("schedule(%s, %s, %s): %v", tc.principal, tc.rate, tc.payment, err)
		}
		if res.Truncated {
			t.Fatalf("schedule(%s, %s, %s) truncated", tc.principal, tc.rate, tc.payment)
		}
		if n := len(res.Installments); n > maxPeriods {
			t.Fatalf("schedule(%s, %s, %s): %d periods", tc.principal, tc.rate, tc.payment, n)
		}

		principalSum := decimal.Zero
		for _, inst := range res.Installments {
			if !inst.Principal.Add(inst.Interest).Equal(inst.Payment) {
				t.Errorf("period %d: %s + %s != %s",
					inst.Period, inst.Principal, inst.Interest, inst.Payment)
			}
			principalSum = principalSum.Add(inst.Principal)
		}
		if !principalSum.Equal(dec(tc.principal)) {
			t.Errorf("principal sum = %s, want %s", principalSum, tc.principal)
		}

		if last := res.Installments[len(res.Installments)-1]; !last.Balance.IsZero() {
			t.Errorf("final balance = %s, want 0", last.Balance)
		}
	}
}

func TestSchedule_ZeroRatePaysPrincipalOnly(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	res, err := Schedule(dec("300.00"), dec("0"), dec("100.00"), asOf)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if n := len(res.Installments); n != 3 {
		t.Fatalf("schedule length = %d, want 3", n)
	}
	if !res.TotalInterest.IsZero() {
		t.Errorf("total interest = %s, want 0", res.TotalInterest)
	}
}

func TestSchedule_NonAmortizingPayment(t *testing.T) {
	asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// first period interest is 12.00; a 12.00 payment never reduces principal
	_, err := Schedule(dec("1200.00"), dec("12"), dec("12.00"), asOf)
	var nonAmortizing *domain.NonAmortizingPaymentError
	if !errors.As(err, &nonAmortizing) {
		t.Fatalf("err = %v, want NonAmortizingPaymentError", err)
	}
	if !nonAmortizing.FirstInterest.Equal(dec("12.00")) {
		t.Errorf("first interest = %s, want 12.00", nonAmortizing.FirstInterest)
	}
}

func TestSchedule_CapReturnsTruncated(t *testing.T) {
	asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// payment barely above interest-only: cannot settle within 360 periods
	res, err := Schedule(dec("1000000.00"), dec("12"), dec("10001.00"), asOf)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !res.Truncated {
		t.Fatal("expected truncated schedule")
	}
	if n := len(res.Installments); n != maxPeriods {
		t.Errorf("schedule length = %d, want %d", n, maxPeriods)
	}
	if last := res.Installments[len(res.Installments)-1]; !last.Balance.IsPositive() {
		t.Errorf("final balance = %s, want > 0", last.Balance)
	}
}

func TestSchedule_SettledPrincipalYieldsEmptySchedule(t *testing.T) {
	asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := Schedule(dec("0"), dec("12"), dec("100.00"), asOf)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(res.Installments) != 0 {
		t.Errorf("schedule length = %d, want 0", len(res.Installments))
	}
	if !res.DebtFreeDate.Equal(asOf) {
		t.Errorf("debt free date = %v, want %v", res.DebtFreeDate, asOf)
	}
}

func TestSchedule_InstallmentDatesAdvanceMonthly(t *testing.T) {
	asOf := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	res, err := Schedule(dec("300.00"), dec("0"), dec("100.00"), asOf)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	want := []time.Time{
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, inst := range res.Installments {
		if !inst.Date.Equal(want[i]) {
			t.Errorf("period %d date = %v, want %v", inst.Period, inst.Date, want[i])
		}
	}
}
