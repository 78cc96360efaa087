package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"debtkeeper/internal/domain"
)

var ErrNotFound = errors.New("not found")

// ErrStaleDebt is returned when a guarded update lost against a concurrent
// writer; the caller should reload and retry or give up.
var ErrStaleDebt = errors.New("debt row changed concurrently")

type DebtsFilter struct {
	OwnerID *int64
	Status  *domain.DebtStatus
	Type    *domain.DebtType
}

type DebtRepository struct {
	db *sql.DB
}

func NewDebtRepository(db *sql.DB) *DebtRepository {
	return &DebtRepository{db: db}
}

const debtColumns = `
	d.id,
	d.owner_id,
	d.name,
	d.creditor,
	d.category,
	d.notes,
	d.color,
	d.debt_type,
	d.initial_amount,
	d.current_amount,
	d.interest_rate,
	d.monthly_payment_target,
	d.start_date,
	d.due_date,
	d.status,
	d.auto_pay,
	d.payment_account_id,
	d.payment_day_of_month,
	d.created_at,
	d.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (domain.Debt, error) {
	var (
		d          domain.Debt
		notes      sql.NullString
		accountID  sql.NullString
		dayOfMonth sql.NullInt64
	)

	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&d.Creditor,
		&d.Category,
		&notes,
		&d.Color,
		&d.Type,
		&d.InitialAmount,
		&d.CurrentAmount,
		&d.InterestRate,
		&d.MonthlyPaymentTarget,
		&d.StartDate,
		&d.DueDate,
		&d.Status,
		&d.AutoPay,
		&accountID,
		&dayOfMonth,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Debt{}, err
	}

	if notes.Valid {
		d.Notes = &notes.String
	}
	if accountID.Valid {
		d.PaymentAccountID = &accountID.String
	}
	if dayOfMonth.Valid {
		day := int(dayOfMonth.Int64)
		d.PaymentDayOfMonth = &day
	}

	return d, nil
}

func (r *DebtRepository) Create(ctx context.Context, d domain.Debt) error {
	query := `
		INSERT INTO debts (
			id, owner_id, name, creditor, category, notes, color, debt_type,
			initial_amount, current_amount, interest_rate, monthly_payment_target,
			start_date, due_date, status, auto_pay, payment_account_id,
			payment_day_of_month, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	var dayOfMonth *int64
	if d.PaymentDayOfMonth != nil {
		v := int64(*d.PaymentDayOfMonth)
		dayOfMonth = &v
	}

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.OwnerID, d.Name, d.Creditor, d.Category, d.Notes, d.Color, d.Type,
		d.InitialAmount, d.CurrentAmount, d.InterestRate, d.MonthlyPaymentTarget,
		d.StartDate, d.DueDate, d.Status, d.AutoPay, d.PaymentAccountID,
		dayOfMonth, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DebtRepository) GetByID(ctx context.Context, id string) (domain.Debt, error) {
	query := `SELECT` + debtColumns + ` FROM debts d WHERE d.id = $1`

	d, err := scanDebt(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Debt{}, ErrNotFound
	}
	return d, err
}

func (r *DebtRepository) List(ctx context.Context, f DebtsFilter) ([]domain.Debt, error) {
	base := `SELECT` + debtColumns + ` FROM debts d`

	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.OwnerID != nil {
		where = append(where, fmt.Sprintf("d.owner_id = $%d", i))
		args = append(args, *f.OwnerID)
		i++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("d.status = $%d", i))
		args = append(args, *f.Status)
		i++
	}
	if f.Type != nil {
		where = append(where, fmt.Sprintf("d.debt_type = $%d", i))
		args = append(args, *f.Type)
		i++
	}

	query := base + " WHERE " + strings.Join(where, " AND ") + " ORDER BY d.due_date, d.created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListNonTerminal returns every debt the reconciliation pass still has to
// look at.
func (r *DebtRepository) ListNonTerminal(ctx context.Context) ([]domain.Debt, error) {
	query := `SELECT` + debtColumns + ` FROM debts d WHERE d.status <> $1 ORDER BY d.id`

	rows, err := r.db.QueryContext(ctx, query, domain.DebtStatusPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAutoPayDue returns non-paid auto-pay debts whose configured payment day
// matches dayOfMonth.
func (r *DebtRepository) ListAutoPayDue(ctx context.Context, dayOfMonth int) ([]domain.Debt, error) {
	query := `SELECT` + debtColumns + `
		FROM debts d
		WHERE d.auto_pay = TRUE
		  AND d.status <> $1
		  AND d.payment_day_of_month = $2
		ORDER BY d.id`

	rows, err := r.db.QueryContext(ctx, query, domain.DebtStatusPaid, dayOfMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatus moves a debt from one status to another, guarded against
// concurrent reconciliation: the write only lands if the row still carries
// the status the caller computed from.
func (r *DebtRepository) UpdateStatus(ctx context.Context, id string, from, to domain.DebtStatus, now time.Time) error {
	query := `UPDATE debts SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	res, err := r.db.ExecContext(ctx, query, to, now, id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStaleDebt
	}
	return nil
}

// UpdateDueDate advances a debt's due window (billing-cycle roll-forward) and
// stores the status recomputed for the new window.
func (r *DebtRepository) UpdateDueDate(ctx context.Context, id string, dueDate time.Time, status domain.DebtStatus, now time.Time) error {
	query := `UPDATE debts SET due_date = $1, status = $2, updated_at = $3 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, dueDate, status, now, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
