package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/andescredit/loan-engine/internal/domain"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) Preview(ctx context.Context, request *domain.PreviewRequest) (*domain.PreviewResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreviewResponse), args.Error(1)
}

func (m *MockLoanService) Create(ctx context.Context, request *domain.CreateLoanRequest) (*domain.LoanDetail, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetail), args.Error(1)
}

func (m *MockLoanService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetail), args.Error(1)
}

func (m *MockLoanService) List(ctx context.Context, filter domain.LoanListFilter) ([]*domain.Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanService) ToggleInstallment(ctx context.Context, loanID, installmentID uuid.UUID, request *domain.ToggleInstallmentRequest) (*domain.ToggleInstallmentResponse, error) {
	args := m.Called(ctx, loanID, installmentID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToggleInstallmentResponse), args.Error(1)
}

func (m *MockLoanService) ExportSchedule(ctx context.Context, loanID uuid.UUID, w io.Writer) (string, error) {
	args := m.Called(ctx, loanID, w)
	return args.String(0), args.Error(1)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) List(ctx context.Context, query, dniPrefix string) ([]*domain.Client, error) {
	args := m.Called(ctx, query, dniPrefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientService) Get(ctx context.Context, id uuid.UUID) (*domain.ClientDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientDetail), args.Error(1)
}
