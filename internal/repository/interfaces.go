package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/andescredit/loan-engine/internal/domain"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	// Create registers a new client
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// GetByDNI retrieves a client by national ID
	GetByDNI(ctx context.Context, dni string) (*domain.Client, error)

	// List searches clients by free text and/or DNI prefix
	List(ctx context.Context, query, dniPrefix string) ([]*domain.Client, error)
}

// LoanRepository defines the interface for loan and installment data operations
type LoanRepository interface {
	// CreateWithSchedule persists a loan and its full installment schedule as
	// one transaction. A concurrent creation for the same client surfaces as
	// a retryable conflict error.
	CreateWithSchedule(ctx context.Context, loan *domain.Loan, installments []*domain.Installment) error

	// GetByID retrieves a loan by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves loans with optional status/client filters
	List(ctx context.Context, filter domain.LoanListFilter) ([]*domain.Loan, error)

	// ListByClientID retrieves all loans owned by a client
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error)

	// HasOpenLoan reports whether the client owns a loan whose status is not PAID
	HasOpenLoan(ctx context.Context, clientID uuid.UUID) (bool, error)

	// GetInstallments retrieves a loan's schedule ordered by installment number
	GetInstallments(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// SetInstallmentPaid toggles one installment's paid state and recomputes
	// the loan status in the same transaction. Returns the updated installment
	// and the new loan status.
	SetInstallmentPaid(ctx context.Context, loanID, installmentID uuid.UUID, paid bool, paidAt *time.Time) (*domain.Installment, string, error)

	// MarkOverdue persists OVERDUE onto past-due pending installments and
	// rolls loan statuses up, in one transaction. Returns the number of
	// installments and loans updated.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, int64, error)
}
