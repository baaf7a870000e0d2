package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/metrics"
	"github.com/samarthc/loan-manager-backend/internal/security"
)

type AuthOptions struct {
	// If set (non-empty), enforce exact issuer match.
	ExpectedIssuer string
}

func AuthMiddleware(verifier security.AccessTokenVerifier, opt AuthOptions) func(next http.Handler) http.Handler {
	if verifier == nil {
		panic("AuthMiddleware: nil verifier")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				// Expired vs malformed both stay 401.
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			if opt.ExpectedIssuer != "" && claims.Issuer != opt.ExpectedIssuer {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			uid := strings.TrimSpace(claims.UserID)
			if uid == "" {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			ctx := withAuth(r.Context(), AuthContext{
				UserID: uid,
				Email:  strings.TrimSpace(claims.Email),
				Name:   strings.TrimSpace(claims.Name),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly requires the authenticated caller to have a stored user record
// with the admin flag set. Runs after AuthMiddleware. A missing record or a
// false flag is 403; a store failure is not an authorization verdict and
// surfaces as 500.
func AdminOnly(users domain.LoanRepository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := GetAuth(r.Context())
			if !ok {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
				return
			}

			u, err := users.GetUser(r.Context(), auth.UserID)
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				fail(w, r, http.StatusForbidden, "auth.forbidden", "admin access required", nil)
				return
			case err != nil:
				fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
				return
			case !u.IsAdmin:
				fail(w, r, http.StatusForbidden, "auth.forbidden", "admin access required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RateLimitMiddleware(cache domain.CacheRepository, limit int, window time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, _ := cache.AllowRequest(r.Context(), clientIP(r), limit, window)
			if !allowed {
				fail(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records per-route request counts and latency. The label is the chi
// route pattern, not the raw path, to keep cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		routePattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && len(rctx.RoutePatterns) > 0 {
			routePattern = rctx.RoutePatterns[len(rctx.RoutePatterns)-1]
		}

		metrics.RecordHTTPRequest(r.Method, routePattern, ww.Status(), time.Since(start))
	})
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

		next.ServeHTTP(w, r)
	})
}

// CORS allows cross-origin requests from the configured origins. An empty
// list disables cross-origin access entirely.
func CORS(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowedMethods := "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	allowedHeaders := "Accept, Authorization, Content-Type, X-Request-Id"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originAllowed(origin, allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
