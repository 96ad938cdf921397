package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/internal/repository"
	customError "github.com/andescredit/loan-engine/pkg/errors"
)

type ClientService struct {
	clients repository.ClientRepository
	loans   repository.LoanRepository
	now     func() time.Time
}

func NewClientService(clients repository.ClientRepository, loans repository.LoanRepository) *ClientService {
	return &ClientService{
		clients: clients,
		loans:   loans,
		now:     time.Now,
	}
}

func (s *ClientService) Create(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	if _, err := s.clients.GetByDNI(ctx, request.DNI); err == nil {
		return nil, customError.WrapClientAlreadyExists(request.DNI)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	client := &domain.Client{
		ID:        uuid.New(),
		DNI:       request.DNI,
		FirstName: request.FirstName,
		LastName:  request.LastName,
		CreatedAt: s.now(),
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return client, nil
}

func (s *ClientService) List(ctx context.Context, query, dniPrefix string) ([]*domain.Client, error) {
	clients, err := s.clients.List(ctx, query, dniPrefix)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

// Get returns a client with every loan enriched with amounts derived from its
// installments: amount already paid, realized interest on paid installments,
// total expected interest, outstanding debt and remaining installment count.
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*domain.ClientDetail, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapClientNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	loans, err := s.loans.ListByClientID(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summaries := make([]*domain.LoanAccountSummary, 0, len(loans))
	for _, loan := range loans {
		installments, err := s.loans.GetInstallments(ctx, loan.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		summaries = append(summaries, summarizeLoan(loan, installments))
	}

	return &domain.ClientDetail{
		Client: client,
		Loans:  summaries,
	}, nil
}

func summarizeLoan(loan *domain.Loan, installments []*domain.Installment) *domain.LoanAccountSummary {
	total := decimal.Zero
	expectedInterest := decimal.Zero
	paidAmount := decimal.Zero
	gained := decimal.Zero
	remaining := 0

	for _, inst := range installments {
		total = total.Add(inst.InstallmentAmount)
		expectedInterest = expectedInterest.Add(inst.InterestAmount)
		if inst.Status == domain.InstallmentStatusPaid {
			paidAmount = paidAmount.Add(inst.InstallmentAmount)
			gained = gained.Add(inst.InterestAmount)
		} else {
			remaining++
		}
	}

	return &domain.LoanAccountSummary{
		Loan:             loan,
		PaidAmount:       paidAmount,
		Gained:           gained,
		ExpectedInterest: expectedInterest,
		Debt:             total.Sub(paidAmount),
		RemainingCount:   remaining,
	}
}
