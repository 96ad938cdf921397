// Package schedule holds the amortization and status logic of the engine.
// Everything here is a pure function: no clock, no storage, no I/O.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andescredit/loan-engine/internal/domain"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/pkg/utils"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// Generate produces the level-payment amortization schedule for the given
// terms: termCount monthly rows whose remaining balance reaches exactly zero
// on the last row. Due date k is startDate advanced by k calendar months with
// day-of-month clamping, evaluated in the business location.
//
// Business bounds (amount limits, rate floor, term range) are not checked
// here; that is the creation policy's job. Only structurally invalid input is
// rejected.
func Generate(terms domain.LoanTerms, loc *time.Location) ([]*domain.Installment, error) {
	if !terms.Principal.IsPositive() {
		return nil, customError.WrapInvalidInput("principal must be positive")
	}
	if terms.TermCount <= 0 {
		return nil, customError.WrapInvalidInput("term count must be positive")
	}
	if terms.InterestRate.IsNegative() {
		return nil, customError.WrapInvalidInput("interest rate must not be negative")
	}
	if loc == nil {
		return nil, customError.WrapInvalidInput("business location is required")
	}

	principal := terms.Principal.Round(2)
	monthlyRate := terms.InterestRate.Div(twelve)
	payment := levelPayment(principal, monthlyRate, terms.TermCount)
	start := utils.StartOfDay(terms.StartDate, loc)

	balance := principal
	rows := make([]*domain.Installment, 0, terms.TermCount)
	for k := 1; k <= terms.TermCount; k++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		installment := payment
		if k == terms.TermCount {
			// The last row absorbs the rounding residue so the balance
			// terminates at exactly zero and principal sums exactly.
			principalPart = balance
			installment = principalPart.Add(interest)
		}
		balance = balance.Sub(principalPart)

		rows = append(rows, &domain.Installment{
			InstallmentNumber: k,
			DueDate:           utils.AddMonths(start, k, loc),
			InstallmentAmount: installment,
			PrincipalAmount:   principalPart,
			InterestAmount:    interest,
			RemainingBalance:  balance,
			Status:            domain.InstallmentStatusPending,
		})
	}

	return rows, nil
}

// levelPayment computes the constant monthly payment
// P·i/(1−(1+i)^−n), or P/n when the rate is zero, rounded to 2 decimals.
func levelPayment(principal, monthlyRate decimal.Decimal, termCount int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termCount))
	if monthlyRate.IsZero() {
		return principal.Div(n).Round(2)
	}
	compound := one.Add(monthlyRate).Pow(n)
	return principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(one)).Round(2)
}
