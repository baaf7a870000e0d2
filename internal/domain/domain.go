package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	StatusPending  LoanStatus = "pending"
	StatusApproved LoanStatus = "approved"
	StatusRejected LoanStatus = "rejected"
	StatusVerified LoanStatus = "verified"
)

var (
	ErrLoanNotFound = errors.New("loan not found")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("forbidden")

	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrCacheMiss = errors.New("cache miss")
)

// User is the local mirror of an identity-provider account. It is upserted on
// every verified login, keyed by the provider-issued identifier.
type User struct {
	ProviderID string    `json:"providerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LoanApplication is created by an end-user and afterwards mutated only by an
// admin status transition or a full deletion.
type LoanApplication struct {
	ID                uuid.UUID  `json:"id"`
	UserID            string     `json:"userId"`
	FullName          string     `json:"fullName"`
	LoanAmount        float64    `json:"loanAmount"`
	Duration          int        `json:"duration"`
	Purpose           string     `json:"purpose"`
	EmploymentStatus  string     `json:"employmentStatus"`
	EmploymentAddress string     `json:"employmentAddress"`
	Status            LoanStatus `json:"status"`
	AppliedAt         time.Time  `json:"appliedAt"`
}

// Profile is what the identity provider knows about an account.
type Profile struct {
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// DashboardStats carries the raw store aggregates; derived figures (savings,
// rates, averages) are computed by the report service on top of these.
type DashboardStats struct {
	ActiveUsers   int
	AdminUsers    int
	BorrowerCount int

	PendingCount  int
	ApprovedCount int
	RejectedCount int
	VerifiedCount int

	ApprovedAmount float64
	VerifiedAmount float64

	RecentLoans []LoanApplication
}

// LoanRepository owns durable state for users and loan applications.
// Status transition and deletion run their checks under a row lock in the
// same transaction that mutates, so two concurrent requests cannot both
// validate against a stale snapshot.
type LoanRepository interface {
	CreateLoan(ctx context.Context, loan LoanApplication) (LoanApplication, error)
	GetLoan(ctx context.Context, id uuid.UUID) (LoanApplication, error)
	// UpdateLoanStatus also reports the status the loan held under the row
	// lock, so callers never observe a stale "from".
	UpdateLoanStatus(ctx context.Context, id uuid.UUID, to LoanStatus) (LoanApplication, LoanStatus, error)
	DeleteLoan(ctx context.Context, id uuid.UUID, callerID string, asAdmin bool) (LoanApplication, error)

	ListLoansByUser(ctx context.Context, userID string) ([]LoanApplication, error)
	ListLoans(ctx context.Context, status *LoanStatus, limit, offset int) ([]LoanApplication, int, error)

	UpsertUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, providerID string) (User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, int, error)

	DashboardStats(ctx context.Context) (DashboardStats, error)
}

// ProfileProvider resolves a provider identifier to the account profile.
type ProfileProvider interface {
	GetProfile(ctx context.Context, providerID string) (Profile, error)
}

type CacheRepository interface {
	GetProfile(ctx context.Context, providerID string) (Profile, error)
	SetProfile(ctx context.Context, p Profile, ttl time.Duration) error

	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans loan lifecycle events out to sibling services.
// Publishing is best-effort: callers log failures and never fail the request.
type EventPublisher interface {
	LoanCreated(ctx context.Context, loan LoanApplication) error
	LoanStatusChanged(ctx context.Context, loan LoanApplication, from LoanStatus) error
	LoanDeleted(ctx context.Context, loan LoanApplication) error
}
