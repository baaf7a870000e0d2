package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/service"
)

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed portfolio", func(t *testing.T) {
		repo := new(MockRepo)
		svc := service.NewReportService(repo)

		// 2 pending, 1 approved for 100, 1 verified for 200.
		repo.On("DashboardStats", ctx).Return(domain.DashboardStats{
			ActiveUsers:    3,
			AdminUsers:     1,
			BorrowerCount:  2,
			PendingCount:   2,
			ApprovedCount:  1,
			ApprovedAmount: 100,
			VerifiedCount:  1,
			VerifiedAmount: 200,
		}, nil)

		rep, err := svc.Dashboard(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, rep.Stats.ActiveUsers)
		assert.Equal(t, 2, rep.Stats.BorrowerCount)
		assert.Equal(t, 300.0, rep.Stats.CashDisbursed)
		assert.Equal(t, 200.0, rep.Stats.CashReceived)
		assert.Equal(t, 1, rep.Stats.RepaidLoans)
		assert.Equal(t, 10.0, rep.Stats.SavingsAccount)
		assert.Equal(t, 1, rep.Stats.OtherAccounts)

		// Breakdown counts only loans still carrying a reviewable status.
		assert.Equal(t, 2, rep.LoanStats.Pending)
		assert.Equal(t, 1, rep.LoanStats.Approved)
		assert.Equal(t, 0, rep.LoanStats.Rejected)
		assert.Equal(t, 3, rep.LoanStats.Total)

		assert.InDelta(t, 150.0, rep.KPIs.AverageLoanAmount, 1e-9)
		assert.InDelta(t, 50.0, rep.KPIs.ApprovalRate, 1e-9)
		assert.InDelta(t, 50.0, rep.KPIs.CollectionRate, 1e-9)

		assert.NotNil(t, rep.RecentLoans)
		assert.Empty(t, rep.RecentLoans)
	})

	t.Run("empty portfolio has no divide-by-zero", func(t *testing.T) {
		repo := new(MockRepo)
		svc := service.NewReportService(repo)

		repo.On("DashboardStats", ctx).Return(domain.DashboardStats{}, nil)

		rep, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.Zero(t, rep.KPIs.ApprovalRate)
		assert.Zero(t, rep.KPIs.CollectionRate)
		assert.Zero(t, rep.KPIs.AverageLoanAmount)
		assert.Zero(t, rep.Stats.CashDisbursed)
	})

	t.Run("all verified collects fully", func(t *testing.T) {
		repo := new(MockRepo)
		svc := service.NewReportService(repo)

		repo.On("DashboardStats", ctx).Return(domain.DashboardStats{
			VerifiedCount:  4,
			VerifiedAmount: 1000,
		}, nil)

		rep, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, rep.KPIs.CollectionRate, 1e-9)
		assert.InDelta(t, 100.0, rep.KPIs.ApprovalRate, 1e-9)
		assert.InDelta(t, 250.0, rep.KPIs.AverageLoanAmount, 1e-9)
		assert.Equal(t, 50.0, rep.Stats.SavingsAccount)
	})
}
