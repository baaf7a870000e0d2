package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/service"
)

func TestLoanService_Create(t *testing.T) {
	repo := new(MockRepo)
	events := new(MockEvents)
	svc := service.NewLoanService(repo, events, nil)

	created := domain.LoanApplication{ID: uuid.New(), UserID: "user_1", Status: domain.StatusPending, LoanAmount: 500}

	repo.On("CreateLoan", mock.Anything, mock.MatchedBy(func(l domain.LoanApplication) bool {
		return l.UserID == "user_1" &&
			l.Status == domain.StatusPending &&
			!l.AppliedAt.IsZero() &&
			l.LoanAmount == 500
	})).Return(created, nil)
	events.On("LoanCreated", mock.Anything, created).Return(nil)

	got, err := svc.Create(context.Background(), "user_1", service.CreateLoanInput{
		FullName:          "Sam Arth",
		LoanAmount:        500,
		Duration:          12,
		Purpose:           "equipment",
		EmploymentStatus:  "employed",
		EmploymentAddress: "12 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, created, got)
	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestLoanService_Create_RepoError(t *testing.T) {
	repo := new(MockRepo)
	svc := service.NewLoanService(repo, nil, nil)

	repo.On("CreateLoan", mock.Anything, mock.Anything).
		Return(domain.LoanApplication{}, errors.New("store rejected"))

	_, err := svc.Create(context.Background(), "user_1", service.CreateLoanInput{})
	assert.Error(t, err)
}

func TestLoanService_Create_EventFailureDoesNotFail(t *testing.T) {
	repo := new(MockRepo)
	events := new(MockEvents)
	svc := service.NewLoanService(repo, events, nil)

	created := domain.LoanApplication{ID: uuid.New(), UserID: "user_1", Status: domain.StatusPending}
	repo.On("CreateLoan", mock.Anything, mock.Anything).Return(created, nil)
	events.On("LoanCreated", mock.Anything, created).Return(errors.New("broker down"))

	_, err := svc.Create(context.Background(), "user_1", service.CreateLoanInput{})
	assert.NoError(t, err)
}

func TestLoanService_Delete_Owner(t *testing.T) {
	repo := new(MockRepo)
	svc := service.NewLoanService(repo, nil, nil)

	loanID := uuid.New()
	repo.On("GetUser", mock.Anything, "user_1").
		Return(domain.User{ProviderID: "user_1", IsAdmin: false}, nil)
	repo.On("DeleteLoan", mock.Anything, loanID, "user_1", false).
		Return(domain.LoanApplication{ID: loanID, UserID: "user_1"}, nil)

	err := svc.Delete(context.Background(), loanID, "user_1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLoanService_Delete_AdminFlagResolved(t *testing.T) {
	repo := new(MockRepo)
	svc := service.NewLoanService(repo, nil, nil)

	loanID := uuid.New()
	repo.On("GetUser", mock.Anything, "admin_1").
		Return(domain.User{ProviderID: "admin_1", IsAdmin: true}, nil)
	repo.On("DeleteLoan", mock.Anything, loanID, "admin_1", true).
		Return(domain.LoanApplication{ID: loanID, UserID: "user_2"}, nil)

	err := svc.Delete(context.Background(), loanID, "admin_1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLoanService_Delete_UnknownCallerIsNotAdmin(t *testing.T) {
	repo := new(MockRepo)
	svc := service.NewLoanService(repo, nil, nil)

	loanID := uuid.New()
	repo.On("GetUser", mock.Anything, "ghost").
		Return(domain.User{}, domain.ErrUserNotFound)
	repo.On("DeleteLoan", mock.Anything, loanID, "ghost", false).
		Return(domain.LoanApplication{}, domain.ErrForbidden)

	err := svc.Delete(context.Background(), loanID, "ghost")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLoanService_Delete_NotFoundPropagates(t *testing.T) {
	repo := new(MockRepo)
	svc := service.NewLoanService(repo, nil, nil)

	loanID := uuid.New()
	repo.On("GetUser", mock.Anything, "user_1").
		Return(domain.User{ProviderID: "user_1"}, nil)
	repo.On("DeleteLoan", mock.Anything, loanID, "user_1", false).
		Return(domain.LoanApplication{}, domain.ErrLoanNotFound)

	err := svc.Delete(context.Background(), loanID, "user_1")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanService_ListMine(t *testing.T) {
	repo := new(MockRepo)
	svc := service.NewLoanService(repo, nil, nil)

	loans := []domain.LoanApplication{{ID: uuid.New(), UserID: "user_1"}}
	repo.On("ListLoansByUser", mock.Anything, "user_1").Return(loans, nil)

	got, err := svc.ListMine(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, loans, got)
}
