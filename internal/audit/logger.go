package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/samarthc/loan-manager-backend/internal/domain"
	appCtx "github.com/samarthc/loan-manager-backend/internal/pkg/context"
)

// Logger provides structured audit logging for business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// ApplicationCreated logs a newly submitted loan application
func (l *Logger) ApplicationCreated(ctx context.Context, loan domain.LoanApplication) {
	l.log.Info().
		Str("action", "loan_created").
		Str("loan_id", loan.ID.String()).
		Str("user_id", loan.UserID).
		Float64("amount", loan.LoanAmount).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Loan application submitted")
}

// ApplicationDeleted logs a removed loan application and who removed it
func (l *Logger) ApplicationDeleted(ctx context.Context, loanID uuid.UUID, ownerID, actorID string, asAdmin bool) {
	l.log.Warn().
		Str("action", "loan_deleted").
		Str("loan_id", loanID.String()).
		Str("owner_id", ownerID).
		Str("actor_id", actorID).
		Bool("as_admin", asAdmin).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Loan application deleted")
}

// StatusChanged logs an admin status transition
func (l *Logger) StatusChanged(ctx context.Context, loanID uuid.UUID, from, to domain.LoanStatus) {
	l.log.Info().
		Str("action", "status_changed").
		Str("loan_id", loanID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Loan status changed")
}

// UserSynced logs an identity verification that upserted the local user
func (l *Logger) UserSynced(ctx context.Context, user domain.User) {
	l.log.Info().
		Str("action", "user_synced").
		Str("user_id", user.ProviderID).
		Str("email", user.Email).
		Bool("is_admin", user.IsAdmin).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("User verified and stored")
}
