package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func collectLoans(rows pgx.Rows) ([]domain.LoanApplication, error) {
	defer rows.Close()

	var out []domain.LoanApplication
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loan)
	}
	return out, rows.Err()
}

// ListLoansByUser returns every application owned by userID, newest first.
func (r *Repository) ListLoansByUser(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY applied_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectLoans(rows)
}

// ListLoans returns one page of applications, newest first, with the total
// count for the same filter. A nil status means no filter.
func (r *Repository) ListLoans(ctx context.Context, status *domain.LoanStatus, limit, offset int) ([]domain.LoanApplication, int, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{limit, offset}
	countArgs := []any{}
	if status != nil {
		where = "WHERE status = $3"
		args = append(args, string(*status))
		countArgs = append(countArgs, string(*status))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`
		FROM loan_applications
		`+where+`
		ORDER BY applied_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	loans, err := collectLoans(rows)
	if err != nil {
		return nil, 0, err
	}

	countWhere := ""
	if status != nil {
		countWhere = "WHERE status = $1"
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM loan_applications `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// ListUsers returns one page of users ordered by display name, with the total
// user count.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT provider_id, name, email, is_admin, created_at, updated_at
		FROM users
		ORDER BY name ASC, provider_id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ProviderID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}
