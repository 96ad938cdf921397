package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andescredit/loan-engine/internal/config"
	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/internal/repository"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/pkg/utils"
)

// CreationPolicy gates loan creation. Checks run in a fixed order and the
// first violated rule is reported; no error aggregation.
type CreationPolicy struct {
	cfg     *config.Config
	clients repository.ClientRepository
	loans   repository.LoanRepository
}

func NewCreationPolicy(cfg *config.Config, clients repository.ClientRepository, loans repository.LoanRepository) *CreationPolicy {
	return &CreationPolicy{
		cfg:     cfg,
		clients: clients,
		loans:   loans,
	}
}

// CheckTerms validates the pure term bounds: principal range, rate floor,
// term range and the start date not being in the past (date-only, business
// timezone). This is the subset of the policy that preview also applies.
func (p *CreationPolicy) CheckTerms(terms domain.LoanTerms, now time.Time) error {
	prefix := p.cfg.Business.CurrencyPrefix

	if terms.Principal.LessThan(p.cfg.MinPrincipal()) {
		return customError.NewBusinessError(
			customError.ErrCodePrincipalBelowMinimum,
			fmt.Sprintf("Minimum loan amount is %s", utils.FormatAmount(prefix, p.cfg.MinPrincipal())),
			nil,
		)
	}

	if terms.Principal.GreaterThan(p.cfg.MaxPrincipal()) {
		return customError.NewBusinessError(
			customError.ErrCodePrincipalAboveMaximum,
			fmt.Sprintf("Maximum loan amount is %s", utils.FormatAmount(prefix, p.cfg.MaxPrincipal())),
			nil,
		)
	}

	if terms.InterestRate.LessThan(p.cfg.MinInterestRate()) {
		return customError.NewBusinessError(
			customError.ErrCodeInterestRateTooLow,
			fmt.Sprintf("Minimum annual interest rate is %s", p.cfg.MinInterestRate().String()),
			nil,
		)
	}

	if terms.TermCount < p.cfg.Business.MinTermMonths || terms.TermCount > p.cfg.Business.MaxTermMonths {
		return customError.NewBusinessError(
			customError.ErrCodeTermOutOfRange,
			fmt.Sprintf("Term must be between %d and %d months", p.cfg.Business.MinTermMonths, p.cfg.Business.MaxTermMonths),
			nil,
		)
	}

	loc := p.cfg.Location()
	start := utils.StartOfDay(terms.StartDate, loc)
	today := utils.StartOfDay(now, loc)
	if start.Before(today) {
		return customError.NewBusinessError(
			customError.ErrCodeStartDateInPast,
			"Loan start date cannot be in the past",
			nil,
		)
	}

	return nil
}

// CheckDeclaration enforces the legal declaration acceptance for principals
// at or above the regulatory disclosure threshold.
func (p *CreationPolicy) CheckDeclaration(terms domain.LoanTerms, declarationAccepted bool) error {
	if terms.Principal.GreaterThanOrEqual(p.cfg.DeclarationThreshold()) && !declarationAccepted {
		return customError.NewBusinessError(
			customError.ErrCodeDeclarationRequired,
			fmt.Sprintf("Loans from %s require an accepted legal declaration",
				utils.FormatAmount(p.cfg.Business.CurrencyPrefix, p.cfg.DeclarationThreshold())),
			nil,
		)
	}
	return nil
}

// Check runs the full ordered gate for a creation request: term bounds,
// declaration, client existence and the single-open-loan rule. The final
// word on the open-loan rule belongs to the store's exclusivity constraint;
// this check just reports the common case before the transaction starts.
func (p *CreationPolicy) Check(ctx context.Context, clientID uuid.UUID, terms domain.LoanTerms, declarationAccepted bool, now time.Time) error {
	if err := p.CheckTerms(terms, now); err != nil {
		return err
	}

	if err := p.CheckDeclaration(terms, declarationAccepted); err != nil {
		return err
	}

	if _, err := p.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapClientNotFound(clientID.String())
		}
		return customError.WrapDatabaseError(err)
	}

	open, err := p.loans.HasOpenLoan(ctx, clientID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if open {
		return customError.WrapActiveLoanExists(clientID.String())
	}

	return nil
}
