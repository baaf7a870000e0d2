package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/samarthc/loan-manager-backend/internal/domain"
	appCtx "github.com/samarthc/loan-manager-backend/internal/pkg/context"
	"github.com/samarthc/loan-manager-backend/internal/service"
	"github.com/samarthc/loan-manager-backend/internal/transport/rest/response"
)

type Handler struct {
	loans    *service.LoanService
	review   *service.ReviewService
	reports  *service.ReportService
	accounts *service.AccountService
}

func NewHandler(loans *service.LoanService, review *service.ReviewService, reports *service.ReportService, accounts *service.AccountService) *Handler {
	return &Handler{loans: loans, review: review, reports: reports, accounts: accounts}
}

type createLoanRequest struct {
	FullName          string  `json:"fullName" validate:"required,max=200"`
	LoanAmount        float64 `json:"loanAmount" validate:"required,gt=0"`
	Duration          int     `json:"duration" validate:"required,gt=0"`
	Purpose           string  `json:"purpose" validate:"required,max=2000"`
	EmploymentStatus  string  `json:"employmentStatus" validate:"required,max=200"`
	EmploymentAddress string  `json:"employmentAddress" validate:"required,max=500"`
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	auth, ok := GetAuth(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req createLoanRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}
	if meta := validateStruct(req); meta != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "validation failed", meta)
		return
	}

	loan, err := h.loans.Create(r.Context(), auth.UserID, service.CreateLoanInput{
		FullName:          strings.TrimSpace(req.FullName),
		LoanAmount:        req.LoanAmount,
		Duration:          req.Duration,
		Purpose:           strings.TrimSpace(req.Purpose),
		EmploymentStatus:  strings.TrimSpace(req.EmploymentStatus),
		EmploymentAddress: strings.TrimSpace(req.EmploymentAddress),
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusCreated, loan)
}

func (h *Handler) MyLoans(w http.ResponseWriter, r *http.Request) {
	auth, ok := GetAuth(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	loans, err := h.loans.ListMine(r.Context(), auth.UserID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if loans == nil {
		loans = []domain.LoanApplication{}
	}

	response.Data(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *Handler) LoansByUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "id"))
	if userID == "" {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid user id", nil)
		return
	}

	loans, err := h.loans.ListByUser(r.Context(), userID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if loans == nil {
		loans = []domain.LoanApplication{}
	}

	response.Data(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid loan id", map[string]string{
			"id": "must be a valid uuid",
		})
		return
	}

	auth, ok := GetAuth(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	if err := h.loans.Delete(r.Context(), loanID, auth.UserID); err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, map[string]string{"msg": "deleted"})
}

func (h *Handler) VerifyIdentity(w http.ResponseWriter, r *http.Request) {
	auth, ok := GetAuth(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	user, err := h.accounts.VerifyAndSync(r.Context(), auth.UserID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, user)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Dashboard(r.Context())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, rep)
}

func (h *Handler) AdminLoans(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query().Get("page"))
	limit := parseLimit(r.URL.Query().Get("limit"))
	offset := (page - 1) * limit

	var status *domain.LoanStatus
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" && s != "all" {
		v := domain.LoanStatus(s)
		status = &v
	}

	loans, total, err := h.review.List(r.Context(), status, limit, offset)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if loans == nil {
		loans = []domain.LoanApplication{}
	}

	response.Data(w, http.StatusOK, map[string]any{
		"loans":      loans,
		"pagination": newPagination(total, page, limit),
	})
}

func (h *Handler) AdminLoanByID(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(chi.URLParam(r, "loanID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid loanID", nil)
		return
	}

	loan, err := h.review.Get(r.Context(), loanID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, loan)
}

func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query().Get("page"))
	limit := parseLimit(r.URL.Query().Get("limit"))
	offset := (page - 1) * limit

	users, total, err := h.accounts.ListUsers(r.Context(), limit, offset)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	response.Data(w, http.StatusOK, map[string]any{
		"users":      users,
		"pagination": newPagination(total, page, limit),
	})
}

func (h *Handler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(chi.URLParam(r, "loanID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid loanID", nil)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	loan, err := h.review.SetStatus(r.Context(), loanID, domain.LoanStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, loan)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		fail(w, r, http.StatusNotFound, "loan.not_found", err.Error(), nil)
	case errors.Is(err, domain.ErrUserNotFound):
		fail(w, r, http.StatusNotFound, "user.not_found", err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		fail(w, r, http.StatusForbidden, "auth.forbidden", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidStatus):
		fail(w, r, http.StatusBadRequest, "loan.invalid_status", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		fail(w, r, http.StatusBadRequest, "loan.invalid_transition", err.Error(), nil)
	default:
		// Do not leak internal details.
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}
