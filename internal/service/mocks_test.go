package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) CreateLoan(ctx context.Context, loan domain.LoanApplication) (domain.LoanApplication, error) {
	args := m.Called(ctx, loan)
	return args.Get(0).(domain.LoanApplication), args.Error(1)
}

func (m *MockRepo) GetLoan(ctx context.Context, id uuid.UUID) (domain.LoanApplication, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.LoanApplication), args.Error(1)
}

func (m *MockRepo) UpdateLoanStatus(ctx context.Context, id uuid.UUID, to domain.LoanStatus) (domain.LoanApplication, domain.LoanStatus, error) {
	args := m.Called(ctx, id, to)
	return args.Get(0).(domain.LoanApplication), args.Get(1).(domain.LoanStatus), args.Error(2)
}

func (m *MockRepo) DeleteLoan(ctx context.Context, id uuid.UUID, callerID string, asAdmin bool) (domain.LoanApplication, error) {
	args := m.Called(ctx, id, callerID, asAdmin)
	return args.Get(0).(domain.LoanApplication), args.Error(1)
}

func (m *MockRepo) ListLoansByUser(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	args := m.Called(ctx, userID)
	var recs []domain.LoanApplication
	if v := args.Get(0); v != nil {
		recs = v.([]domain.LoanApplication)
	}
	return recs, args.Error(1)
}

func (m *MockRepo) ListLoans(ctx context.Context, status *domain.LoanStatus, limit, offset int) ([]domain.LoanApplication, int, error) {
	args := m.Called(ctx, status, limit, offset)
	var recs []domain.LoanApplication
	if v := args.Get(0); v != nil {
		recs = v.([]domain.LoanApplication)
	}
	return recs, args.Int(1), args.Error(2)
}

func (m *MockRepo) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockRepo) GetUser(ctx context.Context, providerID string) (domain.User, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockRepo) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if v := args.Get(0); v != nil {
		users = v.([]domain.User)
	}
	return users, args.Int(1), args.Error(2)
}

func (m *MockRepo) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DashboardStats), args.Error(1)
}

type MockEvents struct{ mock.Mock }

func (m *MockEvents) LoanCreated(ctx context.Context, loan domain.LoanApplication) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockEvents) LoanStatusChanged(ctx context.Context, loan domain.LoanApplication, from domain.LoanStatus) error {
	return m.Called(ctx, loan, from).Error(0)
}

func (m *MockEvents) LoanDeleted(ctx context.Context, loan domain.LoanApplication) error {
	return m.Called(ctx, loan).Error(0)
}

type fakeProvider struct {
	profiles map[string]domain.Profile
	err      error
	calls    int
}

func (f *fakeProvider) GetProfile(ctx context.Context, providerID string) (domain.Profile, error) {
	f.calls++
	if f.err != nil {
		return domain.Profile{}, f.err
	}
	p, ok := f.profiles[providerID]
	if !ok {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	return p, nil
}

type fakeCache struct {
	profiles map[string]domain.Profile
}

func newFakeCache() *fakeCache {
	return &fakeCache{profiles: map[string]domain.Profile{}}
}

func (c *fakeCache) GetProfile(ctx context.Context, providerID string) (domain.Profile, error) {
	p, ok := c.profiles[providerID]
	if !ok {
		return domain.Profile{}, domain.ErrCacheMiss
	}
	return p, nil
}

func (c *fakeCache) SetProfile(ctx context.Context, p domain.Profile, ttl time.Duration) error {
	c.profiles[p.ProviderID] = p
	return nil
}

func (c *fakeCache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
