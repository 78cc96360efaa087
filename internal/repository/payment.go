package repository

import (
	"context"
	"database/sql"

	"debtkeeper/internal/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	p.id,
	p.debt_id,
	p.amount,
	p.principal,
	p.interest,
	p.remaining_balance_after,
	p.payment_date,
	p.source_account_id,
	p.status,
	p.created_at`

func scanPayment(row rowScanner) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.DebtID,
		&p.Amount,
		&p.Principal,
		&p.Interest,
		&p.RemainingBalanceAfter,
		&p.PaymentDate,
		&p.SourceAccountID,
		&p.Status,
		&p.CreatedAt,
	)
	return p, err
}

func (r *PaymentRepository) ListByDebt(ctx context.Context, debtID string) ([]domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments p WHERE p.debt_id = $1 ORDER BY p.payment_date, p.created_at`

	rows, err := r.db.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
