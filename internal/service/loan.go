package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/samarthc/loan-manager-backend/internal/audit"
	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/metrics"
	"github.com/samarthc/loan-manager-backend/internal/pkg/logger"
)

// LoanService creates, lists, and deletes loan applications.
type LoanService struct {
	repo   domain.LoanRepository
	events domain.EventPublisher
	audit  *audit.Logger
}

func NewLoanService(repo domain.LoanRepository, events domain.EventPublisher, auditLog *audit.Logger) *LoanService {
	return &LoanService{repo: repo, events: events, audit: auditLog}
}

// CreateLoanInput carries the applicant-supplied fields; owner and status are
// decided by the service, never by the request body.
type CreateLoanInput struct {
	FullName          string
	LoanAmount        float64
	Duration          int
	Purpose           string
	EmploymentStatus  string
	EmploymentAddress string
}

func (s *LoanService) Create(ctx context.Context, userID string, in CreateLoanInput) (domain.LoanApplication, error) {
	loan := domain.LoanApplication{
		UserID:            userID,
		FullName:          in.FullName,
		LoanAmount:        in.LoanAmount,
		Duration:          in.Duration,
		Purpose:           in.Purpose,
		EmploymentStatus:  in.EmploymentStatus,
		EmploymentAddress: in.EmploymentAddress,
		Status:            domain.StatusPending,
		AppliedAt:         time.Now().UTC(),
	}

	created, err := s.repo.CreateLoan(ctx, loan)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	metrics.RecordLoanApplication()
	if s.audit != nil {
		s.audit.ApplicationCreated(ctx, created)
	}
	if s.events != nil {
		if err := s.events.LoanCreated(ctx, created); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("loan.created event not published")
		}
	}
	return created, nil
}

// ListMine returns the caller's applications, newest first.
func (s *LoanService) ListMine(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	return s.repo.ListLoansByUser(ctx, userID)
}

// ListByUser returns applications for an arbitrary user id. Authorization is
// enforced at the route (admin-gated).
func (s *LoanService) ListByUser(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	return s.repo.ListLoansByUser(ctx, userID)
}

// Delete removes a loan if the caller owns it or is a stored admin. The
// ownership check itself runs inside the repository's deleting transaction.
func (s *LoanService) Delete(ctx context.Context, loanID uuid.UUID, callerID string) error {
	asAdmin := false
	switch u, err := s.repo.GetUser(ctx, callerID); {
	case err == nil:
		asAdmin = u.IsAdmin
	case errors.Is(err, domain.ErrUserNotFound):
		// caller never synced a local record; plain ownership rules apply
	default:
		return err
	}

	deleted, err := s.repo.DeleteLoan(ctx, loanID, callerID, asAdmin)
	if err != nil {
		return err
	}

	metrics.RecordLoanDeletion()
	if s.audit != nil {
		s.audit.ApplicationDeleted(ctx, deleted.ID, deleted.UserID, callerID, asAdmin && deleted.UserID != callerID)
	}
	if s.events != nil {
		if err := s.events.LoanDeleted(ctx, deleted); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("loan.deleted event not published")
		}
	}
	return nil
}
