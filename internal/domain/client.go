package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client represents a borrower identified by national ID (DNI)
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DNI       string    `json:"dni" db:"dni"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateClientRequest struct {
	DNI       string `json:"dni" validate:"required,len=8,numeric"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// LoanAccountSummary is a loan enriched with amounts derived from its
// installments, used on the client detail view.
type LoanAccountSummary struct {
	Loan             *Loan           `json:"loan"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	Gained           decimal.Decimal `json:"gained"`
	ExpectedInterest decimal.Decimal `json:"expected_interest"`
	Debt             decimal.Decimal `json:"debt"`
	RemainingCount   int             `json:"remaining_count"`
}

type ClientDetail struct {
	Client *Client               `json:"client"`
	Loans  []*LoanAccountSummary `json:"loans"`
}
