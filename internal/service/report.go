package service

import (
	"context"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

// savingsRate: share of the repaid (verified) amount booked to the savings
// account figure on the dashboard.
const savingsRate = 0.05

// ReportService aggregates counts and sums for the admin dashboard. Pure
// read-side; every figure is recomputed per request.
type ReportService struct {
	repo domain.LoanRepository
}

func NewReportService(repo domain.LoanRepository) *ReportService {
	return &ReportService{repo: repo}
}

type DashboardReport struct {
	Stats       DashboardFigures         `json:"stats"`
	LoanStats   LoanStatusBreakdown      `json:"loanStats"`
	RecentLoans []domain.LoanApplication `json:"recentLoans"`
	KPIs        DashboardKPIs            `json:"kpis"`
}

type DashboardFigures struct {
	ActiveUsers    int     `json:"activeUsers"`
	BorrowerCount  int     `json:"borrowerCount"`
	CashDisbursed  float64 `json:"cashDisbursed"`
	CashReceived   float64 `json:"cashReceived"`
	RepaidLoans    int     `json:"repaidLoans"`
	SavingsAccount float64 `json:"savingsAccount"`
	OtherAccounts  int     `json:"otherAccounts"`
}

type LoanStatusBreakdown struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

type DashboardKPIs struct {
	AverageLoanAmount float64 `json:"averageLoanAmount"`
	ApprovalRate      float64 `json:"approvalRate"`
	CollectionRate    float64 `json:"collectionRate"`
}

// Dashboard derives the dashboard figures from the raw store aggregates.
// Disbursed means approved or verified; received (repaid) means verified;
// the savings figure is a fixed share of the repaid amount.
func (s *ReportService) Dashboard(ctx context.Context) (DashboardReport, error) {
	raw, err := s.repo.DashboardStats(ctx)
	if err != nil {
		return DashboardReport{}, err
	}

	disbursed := raw.ApprovedAmount + raw.VerifiedAmount
	received := raw.VerifiedAmount
	repaid := raw.VerifiedCount

	totalLoans := raw.PendingCount + raw.ApprovedCount + raw.RejectedCount + repaid

	var approvalRate float64
	if totalLoans > 0 {
		approvalRate = float64(raw.ApprovedCount+repaid) / float64(totalLoans) * 100
	}

	var collectionRate float64
	if raw.ApprovedCount+repaid > 0 {
		collectionRate = float64(repaid) / float64(raw.ApprovedCount+repaid) * 100
	}

	var avgLoanAmount float64
	if raw.ApprovedCount+repaid > 0 {
		avgLoanAmount = disbursed / float64(raw.ApprovedCount+repaid)
	}

	recent := raw.RecentLoans
	if recent == nil {
		recent = []domain.LoanApplication{}
	}

	return DashboardReport{
		Stats: DashboardFigures{
			ActiveUsers:    raw.ActiveUsers,
			BorrowerCount:  raw.BorrowerCount,
			CashDisbursed:  disbursed,
			CashReceived:   received,
			RepaidLoans:    repaid,
			SavingsAccount: received * savingsRate,
			OtherAccounts:  raw.AdminUsers,
		},
		LoanStats: LoanStatusBreakdown{
			Pending:  raw.PendingCount,
			Approved: raw.ApprovedCount,
			Rejected: raw.RejectedCount,
			Total:    raw.PendingCount + raw.ApprovedCount + raw.RejectedCount,
		},
		RecentLoans: recent,
		KPIs: DashboardKPIs{
			AverageLoanAmount: avgLoanAmount,
			ApprovalRate:      approvalRate,
			CollectionRate:    collectionRate,
		},
	}, nil
}
