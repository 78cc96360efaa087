package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"debtkeeper/internal/domain"
)

// LedgerRepository is the single write path for payments. Everything in
// ApplyPayment happens inside one transaction so a failed precondition or a
// lost race leaves the debt and its payment list untouched.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyPayment locks the debt row, hands the snapshot to apply, and persists
// the updated debt plus the new payment record. The balance update is guarded
// by the pre-payment amount; if another writer got there first the
// transaction rolls back with ErrStaleDebt.
func (r *LedgerRepository) ApplyPayment(
	ctx context.Context,
	debtID string,
	apply func(domain.Debt) (domain.Debt, domain.Payment, error),
) (domain.Debt, domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Debt{}, domain.Payment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT` + debtColumns + ` FROM debts d WHERE d.id = $1 FOR UPDATE`

	debt, err := scanDebt(tx.QueryRowContext(ctx, query, debtID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Debt{}, domain.Payment{}, ErrNotFound
	}
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}

	updated, payment, err := apply(debt)
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE debts
		SET current_amount = $1, status = $2, updated_at = $3
		WHERE id = $4 AND current_amount = $5`,
		updated.CurrentAmount, updated.Status, updated.UpdatedAt,
		debtID, debt.CurrentAmount,
	)
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}
	if affected == 0 {
		return domain.Debt{}, domain.Payment{}, ErrStaleDebt
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (
			id, debt_id, amount, principal, interest,
			remaining_balance_after, payment_date, source_account_id, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		payment.ID, payment.DebtID, payment.Amount, payment.Principal, payment.Interest,
		payment.RemainingBalanceAfter, payment.PaymentDate, payment.SourceAccountID,
		payment.Status, payment.CreatedAt,
	)
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Debt{}, domain.Payment{}, fmt.Errorf("commit: %w", err)
	}

	return updated, payment, nil
}
