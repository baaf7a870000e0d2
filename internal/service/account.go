package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samarthc/loan-manager-backend/internal/audit"
	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/metrics"
	"github.com/samarthc/loan-manager-backend/internal/pkg/logger"
)

// AccountService syncs identity-provider profiles into the local user store
// and computes the admin flag from the configured allow-list.
type AccountService struct {
	repo        domain.LoanRepository
	provider    domain.ProfileProvider
	cache       domain.CacheRepository
	audit       *audit.Logger
	adminEmails []string
	cacheTTL    time.Duration
}

func NewAccountService(repo domain.LoanRepository, provider domain.ProfileProvider, cache domain.CacheRepository, auditLog *audit.Logger, adminEmails []string, cacheTTL time.Duration) *AccountService {
	lowered := make([]string, 0, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			lowered = append(lowered, e)
		}
	}
	return &AccountService{
		repo:        repo,
		provider:    provider,
		cache:       cache,
		audit:       auditLog,
		adminEmails: lowered,
		cacheTTL:    cacheTTL,
	}
}

func (s *AccountService) isAdminEmail(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.adminEmails {
		if a == e {
			return true
		}
	}
	return false
}

func (s *AccountService) profile(ctx context.Context, providerID string) (domain.Profile, error) {
	if s.cache != nil {
		p, err := s.cache.GetProfile(ctx, providerID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.WithCtx(ctx).Warn().Err(err).Msg("profile cache read failed")
		}
	}

	p, err := s.provider.GetProfile(ctx, providerID)
	if err != nil {
		return domain.Profile{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, p, s.cacheTTL); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("profile cache write failed")
		}
	}
	return p, nil
}

// VerifyAndSync resolves the caller's profile at the identity provider and
// upserts the local user record, recomputing the admin flag on every login.
func (s *AccountService) VerifyAndSync(ctx context.Context, providerID string) (domain.User, error) {
	p, err := s.profile(ctx, providerID)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.UpsertUser(ctx, domain.User{
		ProviderID: providerID,
		Name:       p.Name,
		Email:      p.Email,
		IsAdmin:    s.isAdminEmail(p.Email),
	})
	if err != nil {
		return domain.User{}, err
	}

	metrics.RecordIdentityVerification()
	if s.audit != nil {
		s.audit.UserSynced(ctx, user)
	}
	return user, nil
}

// ListUsers returns one page of local user records for the admin surface.
func (s *AccountService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}
