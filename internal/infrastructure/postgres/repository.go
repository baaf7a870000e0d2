package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const loanColumns = `id, user_id, full_name, loan_amount, duration, purpose,
       employment_status, employment_address, status, applied_at`

func scanLoan(row pgx.Row) (domain.LoanApplication, error) {
	var l domain.LoanApplication
	var status string
	err := row.Scan(
		&l.ID, &l.UserID, &l.FullName, &l.LoanAmount, &l.Duration, &l.Purpose,
		&l.EmploymentStatus, &l.EmploymentAddress, &status, &l.AppliedAt,
	)
	if err != nil {
		return domain.LoanApplication{}, err
	}
	l.Status = domain.LoanStatus(status)
	return l, nil
}

func (r *Repository) CreateLoan(ctx context.Context, loan domain.LoanApplication) (domain.LoanApplication, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loan_applications
			(user_id, full_name, loan_amount, duration, purpose,
			 employment_status, employment_address, status, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+loanColumns,
		loan.UserID, loan.FullName, loan.LoanAmount, loan.Duration, loan.Purpose,
		loan.EmploymentStatus, loan.EmploymentAddress, string(loan.Status), loan.AppliedAt,
	)
	return scanLoan(row)
}

func (r *Repository) GetLoan(ctx context.Context, id uuid.UUID) (domain.LoanApplication, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+`
		FROM loan_applications
		WHERE id = $1
	`, id)
	loan, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LoanApplication{}, domain.ErrLoanNotFound
	}
	return loan, err
}

// UpdateLoanStatus validates the transition against the row-locked current
// status and persists the new one in the same transaction, so a concurrent
// transition cannot slip past a stale snapshot. The locked prior status is
// returned so callers report the true "from" without a separate read.
func (r *Repository) UpdateLoanStatus(ctx context.Context, id uuid.UUID, to domain.LoanStatus) (domain.LoanApplication, domain.LoanStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.LoanApplication{}, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `
		SELECT status
		FROM loan_applications
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LoanApplication{}, "", domain.ErrLoanNotFound
		}
		return domain.LoanApplication{}, "", err
	}

	from := domain.LoanStatus(current)
	if err := domain.ValidateTransition(from, to); err != nil {
		return domain.LoanApplication{}, "", err
	}

	row := tx.QueryRow(ctx, `
		UPDATE loan_applications
		SET status = $2
		WHERE id = $1
		RETURNING `+loanColumns,
		id, string(to),
	)
	loan, err := scanLoan(row)
	if err != nil {
		return domain.LoanApplication{}, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.LoanApplication{}, "", err
	}
	return loan, from, nil
}

// DeleteLoan removes the record if callerID owns it or asAdmin is set. The
// ownership check runs under a row lock in the deleting transaction; a repeat
// delete reports ErrLoanNotFound, not success.
func (r *Repository) DeleteLoan(ctx context.Context, id uuid.UUID, callerID string, asAdmin bool) (domain.LoanApplication, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.LoanApplication{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT `+loanColumns+`
		FROM loan_applications
		WHERE id = $1
		FOR UPDATE
	`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LoanApplication{}, domain.ErrLoanNotFound
		}
		return domain.LoanApplication{}, err
	}

	if !asAdmin && loan.UserID != callerID {
		return domain.LoanApplication{}, domain.ErrForbidden
	}

	if _, err := tx.Exec(ctx, `DELETE FROM loan_applications WHERE id = $1`, id); err != nil {
		return domain.LoanApplication{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.LoanApplication{}, err
	}
	return loan, nil
}

func (r *Repository) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (provider_id, name, email, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (provider_id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    is_admin = EXCLUDED.is_admin,
		    updated_at = NOW()
		RETURNING provider_id, name, email, is_admin, created_at, updated_at
	`, u.ProviderID, u.Name, u.Email, u.IsAdmin)

	var out domain.User
	err := row.Scan(&out.ProviderID, &out.Name, &out.Email, &out.IsAdmin, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

func (r *Repository) GetUser(ctx context.Context, providerID string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT provider_id, name, email, is_admin, created_at, updated_at
		FROM users
		WHERE provider_id = $1
	`, providerID)

	var u domain.User
	err := row.Scan(&u.ProviderID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}
