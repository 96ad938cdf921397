package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/internal/schedule"
	customError "github.com/andescredit/loan-engine/pkg/errors"
)

// pq error code for unique constraint violations
const uniqueViolation = "23505"

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) CreateWithSchedule(ctx context.Context, loan *domain.Loan, installments []*domain.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	loanQuery := `
		INSERT INTO loans (id, client_id, created_by, principal, interest_rate, term_count, start_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, loanQuery,
		loan.ID,
		loan.ClientID,
		loan.CreatedBy,
		loan.Principal,
		loan.InterestRate,
		loan.TermCount,
		loan.StartDate,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on open loans per client turns the
		// check-then-create race into a detectable conflict here.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return customError.WrapConcurrentConflict("another open loan was created concurrently for this client", err)
		}
		return customError.WrapDatabaseError(err)
	}

	instQuery := `
		INSERT INTO installments (id, loan_id, installment_number, due_date, installment_amount, principal_amount, interest_amount, remaining_balance, status, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, inst := range installments {
		_, err = tx.ExecContext(ctx, instQuery,
			inst.ID,
			inst.LoanID,
			inst.InstallmentNumber,
			inst.DueDate,
			inst.InstallmentAmount,
			inst.PrincipalAmount,
			inst.InterestAmount,
			inst.RemainingBalance,
			inst.Status,
			inst.PaidAt,
			inst.CreatedAt,
		)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, client_id, created_by, principal, interest_rate, term_count, start_date, status, created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanListFilter) ([]*domain.Loan, error) {
	query := `
		SELECT id, client_id, created_by, principal, interest_rate, term_count, start_date, status, created_at, updated_at
		FROM loans
		WHERE ($1 = '' OR status = $1)
		  AND ($2::uuid IS NULL OR client_id = $2)
		ORDER BY created_at DESC
	`

	loans := make([]*domain.Loan, 0)
	if err := r.db.SelectContext(ctx, &loans, query, filter.Status, filter.ClientID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT id, client_id, created_by, principal, interest_rate, term_count, start_date, status, created_at, updated_at
		FROM loans
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	loans := make([]*domain.Loan, 0)
	if err := r.db.SelectContext(ctx, &loans, query, clientID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) HasOpenLoan(ctx context.Context, clientID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM loans WHERE client_id = $1 AND status <> $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, clientID, domain.LoanStatusPaid); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *loanRepository) GetInstallments(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT id, loan_id, installment_number, due_date, installment_amount, principal_amount, interest_amount, remaining_balance, status, paid_at, created_at
		FROM installments
		WHERE loan_id = $1
		ORDER BY installment_number
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, loanID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *loanRepository) SetInstallmentPaid(ctx context.Context, loanID, installmentID uuid.UUID, paid bool, paidAt *time.Time) (*domain.Installment, string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	var inst domain.Installment
	lockQuery := `
		SELECT id, loan_id, installment_number, due_date, installment_amount, principal_amount, interest_amount, remaining_balance, status, paid_at, created_at
		FROM installments
		WHERE id = $1 AND loan_id = $2
		FOR UPDATE
	`
	if err := tx.GetContext(ctx, &inst, lockQuery, installmentID, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", customError.WrapInstallmentNotFound(loanID.String(), installmentID.String())
		}
		return nil, "", customError.WrapDatabaseError(err)
	}

	if paid {
		inst.Status = domain.InstallmentStatusPaid
		inst.PaidAt = paidAt
	} else {
		inst.Status = domain.InstallmentStatusPending
		inst.PaidAt = nil
	}

	updateQuery := `
		UPDATE installments
		SET status = $2, paid_at = $3
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, inst.ID, inst.Status, inst.PaidAt); err != nil {
		return nil, "", customError.WrapDatabaseError(err)
	}

	counts, err := countStatuses(ctx, tx, loanID)
	if err != nil {
		return nil, "", customError.WrapDatabaseError(err)
	}

	newStatus := schedule.AggregateLoanStatus(counts)
	statusQuery := `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, statusQuery, loanID, newStatus, time.Now()); err != nil {
		return nil, "", customError.WrapDatabaseError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", customError.WrapDatabaseError(err)
	}

	return &inst, newStatus, nil
}

func (r *loanRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	instResult, err := tx.ExecContext(ctx, `
		UPDATE installments
		SET status = $1
		WHERE status = $2 AND due_date < $3
	`, domain.InstallmentStatusOverdue, domain.InstallmentStatusPending, asOf)
	if err != nil {
		return 0, 0, customError.WrapDatabaseError(err)
	}

	loanResult, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET status = $1, updated_at = $2
		WHERE status = $3
		  AND id IN (SELECT DISTINCT loan_id FROM installments WHERE status = $4)
	`, domain.LoanStatusOverdue, time.Now(), domain.LoanStatusActive, domain.InstallmentStatusOverdue)
	if err != nil {
		return 0, 0, customError.WrapDatabaseError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, customError.WrapDatabaseError(err)
	}

	instCount, _ := instResult.RowsAffected()
	loanCount, _ := loanResult.RowsAffected()
	return instCount, loanCount, nil
}

func countStatuses(ctx context.Context, tx *sqlx.Tx, loanID uuid.UUID) (domain.StatusCounts, error) {
	rows, err := tx.QueryxContext(ctx, `
		SELECT status, COUNT(*) AS total
		FROM installments
		WHERE loan_id = $1
		GROUP BY status
	`, loanID)
	if err != nil {
		return domain.StatusCounts{}, err
	}
	defer rows.Close()

	var counts domain.StatusCounts
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return domain.StatusCounts{}, err
		}
		switch status {
		case domain.InstallmentStatusPaid:
			counts.Paid = total
		case domain.InstallmentStatusOverdue:
			counts.Overdue = total
		default:
			counts.Pending += total
		}
	}

	return counts, rows.Err()
}
