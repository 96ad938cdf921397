package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/andescredit/loan-engine/internal/config"
	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/internal/pdf"
	"github.com/andescredit/loan-engine/internal/repository"
	"github.com/andescredit/loan-engine/internal/schedule"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/pkg/utils"
)

const dateLayout = "2006-01-02"

type LoanService struct {
	loans    repository.LoanRepository
	clients  repository.ClientRepository
	policy   *CreationPolicy
	renderer *pdf.ScheduleRenderer
	redis    *redis.Client
	cfg      *config.Config
	now      func() time.Time
}

func NewLoanService(
	loans repository.LoanRepository,
	clients repository.ClientRepository,
	policy *CreationPolicy,
	renderer *pdf.ScheduleRenderer,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		loans:    loans,
		clients:  clients,
		policy:   policy,
		renderer: renderer,
		redis:    redisClient,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Preview validates the term bounds and returns the generated schedule with
// its summary. Nothing is persisted.
func (s *LoanService) Preview(ctx context.Context, request *domain.PreviewRequest) (*domain.PreviewResponse, error) {
	terms, err := parseTerms(request.Principal, request.InterestRate, request.TermCount, request.StartDate, s.cfg.Location())
	if err != nil {
		return nil, err
	}

	if err := s.policy.CheckTerms(terms, s.now()); err != nil {
		return nil, err
	}

	rows, err := schedule.Generate(terms, s.cfg.Location())
	if err != nil {
		return nil, err
	}

	totalInterest := decimal.Zero
	totalAmount := decimal.Zero
	for _, row := range rows {
		totalInterest = totalInterest.Add(row.InterestAmount)
		totalAmount = totalAmount.Add(row.InstallmentAmount)
	}

	return &domain.PreviewResponse{
		Summary: domain.PreviewSummary{
			Principal:         terms.Principal,
			InterestRate:      terms.InterestRate,
			TermCount:         terms.TermCount,
			StartDate:         request.StartDate,
			InstallmentAmount: rows[0].InstallmentAmount,
			TotalInterest:     totalInterest,
			TotalAmount:       totalAmount,
			LastDueDate:       rows[len(rows)-1].DueDate.Format(dateLayout),
		},
		Schedule: rows,
	}, nil
}

// Create runs the full creation policy, generates the schedule and persists
// loan plus installments as one atomic unit.
func (s *LoanService) Create(ctx context.Context, request *domain.CreateLoanRequest) (*domain.LoanDetail, error) {
	terms, err := parseTerms(request.Principal, request.InterestRate, request.TermCount, request.StartDate, s.cfg.Location())
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.policy.Check(ctx, request.ClientID, terms, request.DeclarationAccepted, now); err != nil {
		return nil, err
	}

	rows, err := schedule.Generate(terms, s.cfg.Location())
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:           uuid.New(),
		ClientID:     request.ClientID,
		CreatedBy:    request.CreatedBy,
		Principal:    terms.Principal.Round(2),
		InterestRate: terms.InterestRate,
		TermCount:    terms.TermCount,
		StartDate:    utils.StartOfDay(terms.StartDate, s.cfg.Location()),
		Status:       domain.LoanStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, row := range rows {
		row.ID = uuid.New()
		row.LoanID = loan.ID
		row.CreatedAt = now
	}

	if err := s.loans.CreateWithSchedule(ctx, loan, rows); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(ctx, loan.ClientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LoanDetail{
		Loan:     loan,
		Client:   client,
		Schedule: s.annotate(rows, now),
	}, nil
}

// Get returns a loan with its client and schedule, each installment annotated
// with the status computed at the current date.
func (s *LoanService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanDetail, error) {
	loan, client, rows, err := s.materialize(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.LoanDetail{
		Loan:     loan,
		Client:   client,
		Schedule: s.annotate(rows, s.now()),
	}, nil
}

func (s *LoanService) List(ctx context.Context, filter domain.LoanListFilter) ([]*domain.Loan, error) {
	loans, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// ToggleInstallment marks one installment paid or unpaid. The store applies
// the toggle and the loan status recompute in a single transaction, so the
// returned loan status is never stale relative to the installment.
func (s *LoanService) ToggleInstallment(ctx context.Context, loanID, installmentID uuid.UUID, request *domain.ToggleInstallmentRequest) (*domain.ToggleInstallmentResponse, error) {
	paid := request.Paid != nil && *request.Paid

	var paidAt *time.Time
	if paid {
		when := s.now()
		if request.PaidAt != "" {
			parsed, err := time.ParseInLocation(dateLayout, request.PaidAt, s.cfg.Location())
			if err != nil {
				return nil, customError.WrapInvalidInput("paid_at must be a valid date (YYYY-MM-DD)")
			}
			when = parsed
		}
		paidAt = &when
	}

	inst, loanStatus, err := s.loans.SetInstallmentPaid(ctx, loanID, installmentID, paid, paidAt)
	if err != nil {
		return nil, err
	}

	s.invalidateScheduleCache(ctx, loanID)

	return &domain.ToggleInstallmentResponse{
		Installment: inst,
		LoanStatus:  loanStatus,
	}, nil
}

// ExportSchedule renders the loan's schedule as a PDF into w and returns the
// suggested filename.
func (s *LoanService) ExportSchedule(ctx context.Context, loanID uuid.UUID, w io.Writer) (string, error) {
	loan, client, rows, err := s.materialize(ctx, loanID)
	if err != nil {
		return "", err
	}

	doc := &domain.ScheduleDocument{
		Client:   client,
		Loan:     loan,
		Schedule: rows,
	}
	if err := s.renderer.Render(w, doc); err != nil {
		return "", err
	}

	return fmt.Sprintf("cronograma_loan_%s.pdf", loan.ID), nil
}

func (s *LoanService) materialize(ctx context.Context, id uuid.UUID) (*domain.Loan, *domain.Client, []*domain.Installment, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, nil, nil, customError.WrapDatabaseError(err)
	}

	client, err := s.clients.GetByID(ctx, loan.ClientID)
	if err != nil {
		return nil, nil, nil, customError.WrapDatabaseError(err)
	}

	rows, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	return loan, client, rows, nil
}

// getSchedule reads persisted installments through the Redis cache. Cache
// failures degrade to the database, never to an error.
func (s *LoanService) getSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	key := scheduleCacheKey(loanID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var rows []*domain.Installment
			if err := json.Unmarshal(cached, &rows); err == nil {
				return rows, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("loan_id", loanID.String()).Msg("schedule cache read failed")
		}
	}

	rows, err := s.loans.GetInstallments(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(rows); err == nil {
			if err := s.redis.Set(ctx, key, payload, s.cfg.Business.ScheduleCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("loan_id", loanID.String()).Msg("schedule cache write failed")
			}
		}
	}

	return rows, nil
}

func (s *LoanService) invalidateScheduleCache(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, scheduleCacheKey(loanID)).Err(); err != nil {
		log.Warn().Err(err).Str("loan_id", loanID.String()).Msg("schedule cache invalidation failed")
	}
}

func (s *LoanService) annotate(rows []*domain.Installment, now time.Time) []*domain.InstallmentView {
	views := make([]*domain.InstallmentView, 0, len(rows))
	for _, row := range rows {
		computed, days := schedule.Resolve(row, now, s.cfg.Location())
		views = append(views, &domain.InstallmentView{
			Installment:    row,
			ComputedStatus: computed,
			DaysOverdue:    days,
		})
	}
	return views
}

func scheduleCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:schedule:%s", loanID)
}

func parseTerms(principal, rate decimal.Decimal, termCount int, startDate string, loc *time.Location) (domain.LoanTerms, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return domain.LoanTerms{}, customError.WrapInvalidInput("start_date must be a valid date (YYYY-MM-DD)")
	}
	if !principal.IsPositive() {
		return domain.LoanTerms{}, customError.WrapInvalidInput("principal must be positive")
	}
	if rate.IsNegative() {
		return domain.LoanTerms{}, customError.WrapInvalidInput("interest rate must not be negative")
	}

	return domain.LoanTerms{
		Principal:    principal,
		InterestRate: rate,
		TermCount:    termCount,
		StartDate:    start,
	}, nil
}
