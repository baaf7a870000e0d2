package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/metrics"
	"github.com/samarthc/loan-manager-backend/internal/security"
)

type RouterDeps struct {
	Handler  *Handler
	Users    domain.LoanRepository
	Verifier security.AccessTokenVerifier

	JWTIssuer      string
	AllowedOrigins []string

	// Rate limiting; nil cache disables it.
	Cache    domain.CacheRepository
	RLLimit  int
	RLWindow time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Verifier == nil {
		panic("rest.NewRouter: nil verifier")
	}
	if d.Users == nil {
		panic("rest.NewRouter: nil users")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	r.Use(Metrics)
	r.Use(CORS(d.AllowedOrigins))
	if d.Cache != nil && d.RLLimit > 0 {
		r.Use(RateLimitMiddleware(d.Cache, d.RLLimit, d.RLWindow))
	}
	r.Use(SecurityHeaders)

	requireAuth := AuthMiddleware(d.Verifier, AuthOptions{ExpectedIssuer: d.JWTIssuer})
	requireAdmin := AdminOnly(d.Users)

	r.Route("/api/loan", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", d.Handler.CreateLoan)
		r.Get("/my-loans", d.Handler.MyLoans)

		// Same segment, so both methods share the {id} name; DELETE reads
		// it as a loan id, GET as a user id.
		r.Delete("/{id}", d.Handler.DeleteLoan)
		r.With(requireAdmin).Get("/{id}", d.Handler.LoansByUser)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/verify", d.Handler.VerifyIdentity)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireAdmin)

		r.Get("/dashboard-stats", d.Handler.DashboardStats)
		r.Get("/loans", d.Handler.AdminLoans)
		r.Get("/loans/{loanID}", d.Handler.AdminLoanByID)
		r.Patch("/loans/{loanID}/status", d.Handler.UpdateLoanStatus)
		r.Get("/users", d.Handler.AdminUsers)
	})

	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
