package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive  = "ACTIVE"
	LoanStatusPaid    = "PAID"
	LoanStatusOverdue = "OVERDUE"
)

// Loan represents a loan entity. Status is never written directly; it is
// recomputed from installment statuses after every installment mutation.
type Loan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ClientID     uuid.UUID       `json:"client_id" db:"client_id"`
	CreatedBy    string          `json:"created_by" db:"created_by"`
	Principal    decimal.Decimal `json:"principal" db:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermCount    int             `json:"term_count" db:"term_count"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	Status       string          `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanTerms are the parsed inputs to schedule generation.
type LoanTerms struct {
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	TermCount    int
	StartDate    time.Time
}

// DTOs for requests and responses

type PreviewRequest struct {
	Principal    decimal.Decimal `json:"principal" validate:"required"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermCount    int             `json:"term_count" validate:"required,gt=0"`
	StartDate    string          `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type CreateLoanRequest struct {
	ClientID            uuid.UUID       `json:"client_id" validate:"required"`
	CreatedBy           string          `json:"created_by" validate:"required"`
	Principal           decimal.Decimal `json:"principal" validate:"required"`
	InterestRate        decimal.Decimal `json:"interest_rate"`
	TermCount           int             `json:"term_count" validate:"required,gt=0"`
	StartDate           string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	DeclarationAccepted bool            `json:"declaration_accepted"`
}

type PreviewSummary struct {
	Principal         decimal.Decimal `json:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	TermCount         int             `json:"term_count"`
	StartDate         string          `json:"start_date"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	LastDueDate       string          `json:"last_due_date"`
}

type PreviewResponse struct {
	Summary  PreviewSummary `json:"summary"`
	Schedule []*Installment `json:"schedule"`
}

type LoanDetail struct {
	Loan     *Loan              `json:"loan"`
	Client   *Client            `json:"client"`
	Schedule []*InstallmentView `json:"schedule"`
}

type LoanListFilter struct {
	Status   string
	ClientID *uuid.UUID
}

// ScheduleDocument is the materialized view consumed by the PDF renderer.
type ScheduleDocument struct {
	Client   *Client
	Loan     *Loan
	Schedule []*Installment
}
