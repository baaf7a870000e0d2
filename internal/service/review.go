package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/samarthc/loan-manager-backend/internal/audit"
	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/metrics"
	"github.com/samarthc/loan-manager-backend/internal/pkg/logger"
)

// ReviewService transitions loan status through the restricted state machine.
type ReviewService struct {
	repo   domain.LoanRepository
	events domain.EventPublisher
	audit  *audit.Logger
}

func NewReviewService(repo domain.LoanRepository, events domain.EventPublisher, auditLog *audit.Logger) *ReviewService {
	return &ReviewService{repo: repo, events: events, audit: auditLog}
}

// Get returns one application for the review surface.
func (s *ReviewService) Get(ctx context.Context, loanID uuid.UUID) (domain.LoanApplication, error) {
	return s.repo.GetLoan(ctx, loanID)
}

// List returns one page of applications across all users, optionally filtered
// by status, together with the filtered total.
func (s *ReviewService) List(ctx context.Context, status *domain.LoanStatus, limit, offset int) ([]domain.LoanApplication, int, error) {
	if status != nil && !domain.ValidStatus(*status) {
		return nil, 0, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *status)
	}
	return s.repo.ListLoans(ctx, status, limit, offset)
}

// SetStatus moves the loan to the requested status. The forbidden-pair check
// runs against the row-locked current status inside the repository
// transaction, so it cannot race a concurrent transition; the "from" reported
// to metrics, audit, and events is that locked status, never a stale read.
func (s *ReviewService) SetStatus(ctx context.Context, loanID uuid.UUID, to domain.LoanStatus) (domain.LoanApplication, error) {
	if !domain.ValidStatus(to) {
		return domain.LoanApplication{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, to)
	}

	updated, from, err := s.repo.UpdateLoanStatus(ctx, loanID, to)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	metrics.RecordStatusTransition(string(from), string(to))
	if s.audit != nil {
		s.audit.StatusChanged(ctx, loanID, from, to)
	}
	if s.events != nil {
		if err := s.events.LoanStatusChanged(ctx, updated, from); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("loan.status_changed event not published")
		}
	}
	return updated, nil
}
