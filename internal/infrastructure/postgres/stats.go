package postgres

import (
	"context"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

// DashboardStats recomputes the aggregates on every call; the dashboard is a
// handful of aggregate queries, not an algorithmic workload, so nothing is
// cached or maintained incrementally.
func (r *Repository) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var s domain.DashboardStats

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_admin)
		FROM users
	`).Scan(&s.ActiveUsers, &s.AdminUsers); err != nil {
		return domain.DashboardStats{}, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM loan_applications
	`).Scan(&s.BorrowerCount); err != nil {
		return domain.DashboardStats{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(loan_amount), 0)
		FROM loan_applications
		GROUP BY status
	`)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		var sum float64
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return domain.DashboardStats{}, err
		}
		switch domain.LoanStatus(status) {
		case domain.StatusPending:
			s.PendingCount = count
		case domain.StatusApproved:
			s.ApprovedCount = count
			s.ApprovedAmount = sum
		case domain.StatusRejected:
			s.RejectedCount = count
		case domain.StatusVerified:
			s.VerifiedCount = count
			s.VerifiedAmount = sum
		}
	}
	if err := rows.Err(); err != nil {
		return domain.DashboardStats{}, err
	}

	recent, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`
		FROM loan_applications
		ORDER BY applied_at DESC, id DESC
		LIMIT 10
	`)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	s.RecentLoans, err = collectLoans(recent)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	return s, nil
}
