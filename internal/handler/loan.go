package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/pkg/response"
)

// LoanService is the surface this handler needs from the service layer.
type LoanService interface {
	Preview(ctx context.Context, request *domain.PreviewRequest) (*domain.PreviewResponse, error)
	Create(ctx context.Context, request *domain.CreateLoanRequest) (*domain.LoanDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.LoanDetail, error)
	List(ctx context.Context, filter domain.LoanListFilter) ([]*domain.Loan, error)
	ToggleInstallment(ctx context.Context, loanID, installmentID uuid.UUID, request *domain.ToggleInstallmentRequest) (*domain.ToggleInstallmentResponse, error)
	ExportSchedule(ctx context.Context, loanID uuid.UUID, w io.Writer) (string, error)
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *LoanHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var request domain.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "request validation failed", err)
		return
	}

	preview, err := h.service.Preview(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, preview)
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "request validation failed", err)
		return
	}

	detail, err := h.service.Create(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, detail)
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.LoanListFilter{
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "client_id must be a valid UUID", err)
			return
		}
		filter.ClientID = &clientID
	}

	loans, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, detail)
}

func (h *LoanHandler) ToggleInstallment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}
	installmentID, ok := pathUUID(w, r, "installmentId")
	if !ok {
		return
	}

	var request domain.ToggleInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "request validation failed", err)
		return
	}

	result, err := h.service.ToggleInstallment(r.Context(), loanID, installmentID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LoanHandler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	// Render into a buffer first so errors still produce a JSON response
	// instead of a truncated PDF.
	var buf bytes.Buffer
	filename, err := h.service.ExportSchedule(r.Context(), id, &buf)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, fmt.Sprintf("%s must be a valid UUID", name), err)
		return uuid.Nil, false
	}
	return id, true
}
