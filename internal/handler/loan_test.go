package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andescredit/loan-engine/internal/domain"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/tests/mocks"
)

func loanRouter(service *mocks.MockLoanService) *mux.Router {
	h := NewLoanHandler(service)
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/loans/preview", h.Preview).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.List).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/installments/{installmentId}", h.ToggleInstallment).Methods(http.MethodPatch)
	api.HandleFunc("/loans/{loanId}/schedule.pdf", h.ExportSchedule).Methods(http.MethodGet)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	return payload.Code
}

func TestPreviewHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mocks.MockLoanService{}
		service.On("Preview", mock.Anything, mock.MatchedBy(func(r *domain.PreviewRequest) bool {
			return r.TermCount == 12 && r.StartDate == "2024-01-15"
		})).Return(&domain.PreviewResponse{
			Summary: domain.PreviewSummary{InstallmentAmount: decimal.RequireFromString("88.85")},
		}, nil)

		recorder := doRequest(t, loanRouter(service), http.MethodPost, "/api/v1/loans/preview",
			`{"principal":"1000.00","interest_rate":"0.12","term_count":12,"start_date":"2024-01-15"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"88.85"`)
		service.AssertExpectations(t)
	})

	t.Run("validation failure skips the service", func(t *testing.T) {
		service := &mocks.MockLoanService{}

		recorder := doRequest(t, loanRouter(service), http.MethodPost, "/api/v1/loans/preview",
			`{"principal":"1000.00","start_date":"not-a-date"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
	})
}

func TestCreateLoanHandler(t *testing.T) {
	clientID := uuid.New()
	body := `{"client_id":"` + clientID.String() + `","created_by":"admin","principal":"1000.00","interest_rate":"0.12","term_count":12,"start_date":"2024-01-15"}`

	t.Run("created", func(t *testing.T) {
		service := &mocks.MockLoanService{}
		service.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.CreateLoanRequest) bool {
			return r.ClientID == clientID && r.CreatedBy == "admin"
		})).Return(&domain.LoanDetail{Loan: &domain.Loan{ID: uuid.New(), Status: domain.LoanStatusActive}}, nil)

		recorder := doRequest(t, loanRouter(service), http.MethodPost, "/api/v1/loans", body)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("business rule violation returns its code", func(t *testing.T) {
		service := &mocks.MockLoanService{}
		service.On("Create", mock.Anything, mock.Anything).
			Return(nil, customError.WrapActiveLoanExists(clientID.String()))

		recorder := doRequest(t, loanRouter(service), http.MethodPost, "/api/v1/loans", body)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, customError.ErrCodeActiveLoanExists, decodeErrorCode(t, recorder))
	})

	t.Run("write conflict returns 409", func(t *testing.T) {
		service := &mocks.MockLoanService{}
		service.On("Create", mock.Anything, mock.Anything).
			Return(nil, customError.WrapConcurrentConflict("open loan uniqueness", assert.AnError))

		recorder := doRequest(t, loanRouter(service), http.MethodPost, "/api/v1/loans", body)

		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Equal(t, customError.ErrCodeConcurrentConflict, decodeErrorCode(t, recorder))
	})
}

func TestGetLoanHandler(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		loanID := uuid.New()
		service := &mocks.MockLoanService{}
		service.On("Get", mock.Anything, loanID).Return(nil, customError.WrapLoanNotFound(loanID.String()))

		recorder := doRequest(t, loanRouter(service), http.MethodGet, "/api/v1/loans/"+loanID.String(), "")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, customError.ErrCodeLoanNotFound, decodeErrorCode(t, recorder))
	})

	t.Run("malformed id", func(t *testing.T) {
		service := &mocks.MockLoanService{}

		recorder := doRequest(t, loanRouter(service), http.MethodGet, "/api/v1/loans/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestListLoansHandler(t *testing.T) {
	clientID := uuid.New()
	service := &mocks.MockLoanService{}
	service.On("List", mock.Anything, mock.MatchedBy(func(f domain.LoanListFilter) bool {
		return f.Status == domain.LoanStatusOverdue && f.ClientID != nil && *f.ClientID == clientID
	})).Return([]*domain.Loan{}, nil)

	recorder := doRequest(t, loanRouter(service), http.MethodGet,
		"/api/v1/loans?status=OVERDUE&client_id="+clientID.String(), "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	service.AssertExpectations(t)
}

func TestToggleInstallmentHandler(t *testing.T) {
	loanID := uuid.New()
	installmentID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service := &mocks.MockLoanService{}
		service.On("ToggleInstallment", mock.Anything, loanID, installmentID, mock.MatchedBy(func(r *domain.ToggleInstallmentRequest) bool {
			return r.Paid != nil && *r.Paid
		})).Return(&domain.ToggleInstallmentResponse{LoanStatus: domain.LoanStatusActive}, nil)

		recorder := doRequest(t, loanRouter(service), http.MethodPatch,
			"/api/v1/loans/"+loanID.String()+"/installments/"+installmentID.String(), `{"paid":true}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("installment not found", func(t *testing.T) {
		service := &mocks.MockLoanService{}
		service.On("ToggleInstallment", mock.Anything, loanID, installmentID, mock.Anything).
			Return(nil, customError.WrapInstallmentNotFound(loanID.String(), installmentID.String()))

		recorder := doRequest(t, loanRouter(service), http.MethodPatch,
			"/api/v1/loans/"+loanID.String()+"/installments/"+installmentID.String(), `{"paid":true}`)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, customError.ErrCodeInstallmentNotFound, decodeErrorCode(t, recorder))
	})
}

func TestExportScheduleHandler(t *testing.T) {
	loanID := uuid.New()
	service := &mocks.MockLoanService{}
	service.On("ExportSchedule", mock.Anything, loanID, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = args.Get(2).(io.Writer).Write([]byte("%PDF-1.4 fake"))
		}).
		Return("cronograma_loan_"+loanID.String()+".pdf", nil)

	recorder := doRequest(t, loanRouter(service), http.MethodGet,
		"/api/v1/loans/"+loanID.String()+"/schedule.pdf", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/pdf", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "cronograma_loan_"+loanID.String()+".pdf")
	assert.True(t, bytes.HasPrefix(recorder.Body.Bytes(), []byte("%PDF")))
}
