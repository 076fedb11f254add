package handler

import (
	"credikhaata/internal/api/handler/dto"
	"credikhaata/internal/api/middleware"
	"credikhaata/internal/domain/customer"
	"credikhaata/internal/domain/loan"
	"credikhaata/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Authentication required."
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, "Access denied."
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, customer.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvalidRepaymentAmount),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrLoanAlreadyPaid):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getLoanIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "loanID")
	if idStr == "" {
		return 0, fmt.Errorf("loanID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

func ownerIDFromRequest(r *http.Request) (int64, error) {
	ownerID, ok := middleware.OwnerIDFromContext(r.Context())
	if !ok {
		return 0, fmt.Errorf("%w: missing caller identity", apperrors.ErrUnauthorized)
	}
	return ownerID, nil
}

// CreateLoan handles the creation of a new loan.
//
// @Summary Create a new loan
// @Description Records credit extended for an item to one of the caller's customers. The customer must already exist and belong to the caller.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	dueDate, err := req.DueDateValue()
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	createdLoan, err := h.service.CreateLoan(r.Context(), ownerID, loan.CreateLoanParams{
		CustomerID:      req.CustomerID,
		ItemDescription: req.ItemDescription,
		Amount:          req.LoanAmount,
		DueDate:         dueDate,
		Frequency:       loan.Frequency(req.Frequency),
		InterestRate:    req.InterestRate,
		GraceDays:       req.GraceDays,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(createdLoan))
}

// ListLoans returns all loans belonging to the caller.
//
// @Summary List loans
// @Description Returns every loan recorded by the authenticated shopkeeper, each with the referenced customer's name and phone.
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.LoanResponse "Loans successfully retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	listings, err := h.service.ListLoans(r.Context(), ownerID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.LoanResponse, 0, len(listings))
	for _, listing := range listings {
		resp = append(resp, dto.NewLoanListingResponse(listing))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetLoan retrieves the details of a specific loan.
//
// @Summary Retrieve loan details
// @Description Retrieves a loan by its ID. Loans belonging to other shopkeepers behave as if they do not exist.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	domainLoan, err := h.service.GetLoan(r.Context(), ownerID, loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(domainLoan))
}

// UpdateStatus sets a loan's status by administrative override.
//
// @Summary Update loan status
// @Description Sets the stored status of a loan. Marking a loan paid zeroes its balance regardless of repayments; prefer the repayment endpoint for repayment-driven transitions.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.UpdateLoanStatusRequest true "New status"
// @Success 200 {object} dto.LoanResponse "Loan status successfully updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID, payload, or status value"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.UpdateLoanStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidStatus, err))
		return
	}

	updatedLoan, err := h.service.UpdateStatus(r.Context(), ownerID, loanID, loan.LoanStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updatedLoan))
}

// RecordRepayment applies a repayment against a loan.
//
// @Summary Record a repayment
// @Description Applies a partial or full repayment against a loan's outstanding balance. Driving the balance to exactly zero marks the loan paid.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RecordRepaymentRequest true "Repayment request payload"
// @Success 200 {object} dto.RepaymentResponse "Repayment successfully recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID, payload, or repayment amount"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/repayments [post]
// @Security BearerAuth
func (h *LoanHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RecordRepaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	amountDecimal, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid numeric format for amount", apperrors.ErrInvalidArgument))
		return
	}
	amountFloat, _ := amountDecimal.Float64()

	updatedLoan, receipt, err := h.service.RecordRepayment(r.Context(), ownerID, loanID, amountFloat)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewRepaymentResponse(updatedLoan, receipt))
}

// GetSummary returns the caller's portfolio summary.
//
// @Summary Portfolio summary
// @Description Returns total loaned, total collected, overdue exposure and average repayment time across the caller's loans.
// @Tags Loans
// @Produce json
// @Success 200 {object} dto.SummaryResponse "Summary successfully computed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/summary [get]
// @Security BearerAuth
func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), ownerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}

// ListOverdue returns the caller's loans that are past due right now.
//
// @Summary List overdue loans
// @Description Returns loans past their due date that have not been fully repaid, with days overdue computed against the current time.
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.OverdueLoanResponse "Overdue loans successfully retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/overdue [get]
// @Security BearerAuth
func (h *LoanHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	overdue, err := h.service.ListOverdueLoans(r.Context(), ownerID, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.OverdueLoanResponse, 0, len(overdue))
	for _, o := range overdue {
		resp = append(resp, dto.NewOverdueLoanResponse(o))
	}
	respondJSON(w, http.StatusOK, resp)
}
