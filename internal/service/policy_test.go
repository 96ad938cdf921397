package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andescredit/loan-engine/internal/config"
	"github.com/andescredit/loan-engine/internal/domain"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			MinPrincipal:         "300",
			MaxPrincipal:         "200000",
			MinInterestRate:      "0.10",
			MinTermMonths:        6,
			MaxTermMonths:        60,
			DeclarationThreshold: "5350",
			Timezone:             "America/Lima",
			CurrencyPrefix:       "S/",
			ScheduleCacheTTL:     time.Minute,
		},
	}
}

func testTerms(principal string, rate string, termCount int, startDate string) domain.LoanTerms {
	cfg := testConfig()
	start, err := time.ParseInLocation("2006-01-02", startDate, cfg.Location())
	if err != nil {
		panic(err)
	}
	return domain.LoanTerms{
		Principal:    decimal.RequireFromString(principal),
		InterestRate: decimal.RequireFromString(rate),
		TermCount:    termCount,
		StartDate:    start,
	}
}

func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	var businessErr *customError.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, code, businessErr.Code)
}

func TestCheckTerms(t *testing.T) {
	cfg := testConfig()
	policy := NewCreationPolicy(cfg, nil, nil)
	now := time.Date(2024, 1, 10, 9, 30, 0, 0, cfg.Location())

	tests := []struct {
		name     string
		terms    domain.LoanTerms
		wantCode string
	}{
		{"valid terms", testTerms("1000", "0.12", 12, "2024-01-15"), ""},
		{"minimum boundaries accepted", testTerms("300", "0.10", 6, "2024-01-10"), ""},
		{"maximum boundaries accepted", testTerms("200000", "0.10", 60, "2024-01-10"), ""},
		{"principal just below minimum", testTerms("299.99", "0.12", 12, "2024-01-15"), customError.ErrCodePrincipalBelowMinimum},
		{"principal above maximum", testTerms("200000.01", "0.12", 12, "2024-01-15"), customError.ErrCodePrincipalAboveMaximum},
		{"rate below floor", testTerms("1000", "0.05", 12, "2024-01-15"), customError.ErrCodeInterestRateTooLow},
		{"term too short", testTerms("1000", "0.12", 5, "2024-01-15"), customError.ErrCodeTermOutOfRange},
		{"term too long", testTerms("1000", "0.12", 61, "2024-01-15"), customError.ErrCodeTermOutOfRange},
		{"start date in the past", testTerms("1000", "0.12", 12, "2024-01-09"), customError.ErrCodeStartDateInPast},
		{"start date today is allowed", testTerms("1000", "0.12", 12, "2024-01-10"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CheckTerms(tt.terms, now)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assertBusinessCode(t, err, tt.wantCode)
		})
	}
}

func TestCheckDeclaration(t *testing.T) {
	policy := NewCreationPolicy(testConfig(), nil, nil)

	tests := []struct {
		name      string
		principal string
		accepted  bool
		wantCode  string
	}{
		{"below threshold without acceptance", "5349.99", false, ""},
		{"at threshold without acceptance", "5350", false, customError.ErrCodeDeclarationRequired},
		{"at threshold with acceptance", "5350", true, ""},
		{"above threshold with acceptance", "100000", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := testTerms(tt.principal, "0.12", 12, "2024-01-15")
			err := policy.CheckDeclaration(terms, tt.accepted)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assertBusinessCode(t, err, tt.wantCode)
		})
	}
}

func TestCheckFullGate(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, cfg.Location())
	clientID := uuid.New()
	terms := testTerms("1000", "0.12", 12, "2024-01-15")

	t.Run("client not found", func(t *testing.T) {
		clientRepo := &mocks.MockClientRepository{}
		loanRepo := &mocks.MockLoanRepository{}
		clientRepo.On("GetByID", mock.Anything, clientID).Return(nil, sql.ErrNoRows)

		policy := NewCreationPolicy(cfg, clientRepo, loanRepo)
		err := policy.Check(context.Background(), clientID, terms, false, now)

		assertBusinessCode(t, err, customError.ErrCodeClientNotFound)
		loanRepo.AssertNotCalled(t, "HasOpenLoan", mock.Anything, mock.Anything)
	})

	t.Run("client already has an open loan", func(t *testing.T) {
		clientRepo := &mocks.MockClientRepository{}
		loanRepo := &mocks.MockLoanRepository{}
		clientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{ID: clientID}, nil)
		loanRepo.On("HasOpenLoan", mock.Anything, clientID).Return(true, nil)

		policy := NewCreationPolicy(cfg, clientRepo, loanRepo)
		err := policy.Check(context.Background(), clientID, terms, false, now)

		assertBusinessCode(t, err, customError.ErrCodeActiveLoanExists)
		assert.ErrorIs(t, err, customError.ErrActiveLoanExists)
	})

	t.Run("all checks pass", func(t *testing.T) {
		clientRepo := &mocks.MockClientRepository{}
		loanRepo := &mocks.MockLoanRepository{}
		clientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{ID: clientID}, nil)
		loanRepo.On("HasOpenLoan", mock.Anything, clientID).Return(false, nil)

		policy := NewCreationPolicy(cfg, clientRepo, loanRepo)
		err := policy.Check(context.Background(), clientID, terms, false, now)

		assert.NoError(t, err)
	})

	t.Run("term failure reported before client lookup", func(t *testing.T) {
		clientRepo := &mocks.MockClientRepository{}
		loanRepo := &mocks.MockLoanRepository{}

		policy := NewCreationPolicy(cfg, clientRepo, loanRepo)
		err := policy.Check(context.Background(), clientID, testTerms("100", "0.12", 12, "2024-01-15"), false, now)

		assertBusinessCode(t, err, customError.ErrCodePrincipalBelowMinimum)
		clientRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("database failure wrapped", func(t *testing.T) {
		clientRepo := &mocks.MockClientRepository{}
		loanRepo := &mocks.MockLoanRepository{}
		clientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{ID: clientID}, nil)
		loanRepo.On("HasOpenLoan", mock.Anything, clientID).Return(false, errors.New("connection reset"))

		policy := NewCreationPolicy(cfg, clientRepo, loanRepo)
		err := policy.Check(context.Background(), clientID, terms, false, now)

		assertBusinessCode(t, err, customError.ErrCodeDatabaseError)
	})
}
