package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "PENDING"
	InstallmentStatusPaid    = "PAID"
	InstallmentStatusOverdue = "OVERDUE"
)

// Installment is one row of a loan's amortization schedule. Rows are created
// once at loan creation; only status and paid_at ever change afterwards.
type Installment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	InterestAmount    decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	Status            string          `json:"status" db:"status"`
	PaidAt            *time.Time      `json:"paid_at" db:"paid_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// InstallmentView is an installment annotated with the transient status
// computed at read time. The persisted status is never rewritten by reads.
type InstallmentView struct {
	*Installment
	ComputedStatus string `json:"computed_status"`
	DaysOverdue    int    `json:"days_overdue"`
}

type ToggleInstallmentRequest struct {
	Paid   *bool  `json:"paid" validate:"required"`
	PaidAt string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type ToggleInstallmentResponse struct {
	Installment *Installment `json:"installment"`
	LoanStatus  string       `json:"loan_status"`
}

// StatusCounts is the multiset of persisted installment statuses for a loan.
type StatusCounts struct {
	Pending int
	Paid    int
	Overdue int
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Paid + c.Overdue
}
