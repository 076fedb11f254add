package handler

import (
	"credikhaata/internal/api/handler/dto"
	"credikhaata/internal/api/middleware"
	"credikhaata/internal/domain/loan"
	"credikhaata/internal/pkg/apperrors"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testOwnerID = int64(7)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, ownerID int64, params loan.CreateLoanParams) (*loan.Loan, error) {
	args := m.Called(ctx, ownerID, params)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, ownerID, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, ownerID, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, ownerID int64) ([]loan.Listing, error) {
	args := m.Called(ctx, ownerID)
	if listings, ok := args.Get(0).([]loan.Listing); ok {
		return listings, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RecordRepayment(ctx context.Context, ownerID, loanID int64, amount loan.Money) (*loan.Loan, *loan.Receipt, error) {
	args := m.Called(ctx, ownerID, loanID, amount)
	var l *loan.Loan
	if v, ok := args.Get(0).(*loan.Loan); ok {
		l = v
	}
	var r *loan.Receipt
	if v, ok := args.Get(1).(*loan.Receipt); ok {
		r = v
	}
	return l, r, args.Error(2)
}

func (m *MockLoanService) UpdateStatus(ctx context.Context, ownerID, loanID int64, status loan.LoanStatus) (*loan.Loan, error) {
	args := m.Called(ctx, ownerID, loanID, status)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetSummary(ctx context.Context, ownerID int64) (loan.Summary, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(loan.Summary), args.Error(1)
}

func (m *MockLoanService) ListOverdueLoans(ctx context.Context, ownerID int64, now time.Time) ([]loan.OverdueLoan, error) {
	args := m.Called(ctx, ownerID, now)
	if overdue, ok := args.Get(0).([]loan.OverdueLoan); ok {
		return overdue, args.Error(1)
	}
	return nil, args.Error(1)
}

// authedRequest builds a request carrying the owner identity and optional chi
// URL params, the way the router's middleware chain would.
func authedRequest(method, target string, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	ctx := middleware.WithOwnerID(req.Context(), testOwnerID)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func sampleHandlerLoan() *loan.Loan {
	issue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &loan.Loan{
		ID:              123,
		CustomerID:      3,
		OwnerID:         testOwnerID,
		ItemDescription: "monthly kirana credit",
		LoanAmount:      1000,
		IssueDate:       issue,
		DueDate:         issue.AddDate(0, 1, 0),
		Frequency:       loan.FrequencyMonthly,
		Balance:         1000,
		Status:          loan.StatusPending,
	}
}

func TestLoanHandlerCreateLoan(t *testing.T) {
	t.Run("successfully creates a loan", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("CreateLoan", mock.Anything, testOwnerID, mock.AnythingOfType("loan.CreateLoanParams")).
			Return(sampleHandlerLoan(), nil)

		body := `{"customerId":3,"itemDescription":"monthly kirana credit","loanAmount":1000,"dueDate":"2026-03-01","frequency":"monthly"}`
		req := authedRequest(http.MethodPost, "/loans", body, nil)
		rec := httptest.NewRecorder()

		handler.CreateLoan(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "123", resp.ID)
		assert.Equal(t, "1000.00", resp.LoanAmount)
		assert.Equal(t, "1000.00", resp.Balance)
		assert.Equal(t, "pending", resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects an invalid payload", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		body := `{"customerId":3,"itemDescription":"x","loanAmount":-5,"dueDate":"2026-03-01","frequency":"monthly"}`
		req := authedRequest(http.MethodPost, "/loans", body, nil)
		rec := httptest.NewRecorder()

		handler.CreateLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed due date", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		body := `{"customerId":3,"itemDescription":"x","loanAmount":100,"dueDate":"03/01/2026","frequency":"monthly"}`
		req := authedRequest(http.MethodPost, "/loans", body, nil)
		rec := httptest.NewRecorder()

		handler.CreateLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps a missing customer to 404", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("CreateLoan", mock.Anything, testOwnerID, mock.AnythingOfType("loan.CreateLoanParams")).
			Return(nil, apperrors.ErrNotFound)

		body := `{"customerId":99,"itemDescription":"x","loanAmount":100,"dueDate":"2026-03-01","frequency":"monthly"}`
		req := authedRequest(http.MethodPost, "/loans", body, nil)
		rec := httptest.NewRecorder()

		handler.CreateLoan(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("requires an authenticated caller", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(nil))
		rec := httptest.NewRecorder()

		handler.CreateLoan(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoanHandlerGetLoan(t *testing.T) {
	t.Run("successfully retrieves loan details", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("GetLoan", mock.Anything, testOwnerID, int64(123)).Return(sampleHandlerLoan(), nil)

		req := authedRequest(http.MethodGet, "/loans/123", "", map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.GetLoan(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "123", resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("returns error for invalid loan ID", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		req := authedRequest(http.MethodGet, "/loans/invalid", "", map[string]string{"loanID": "invalid"})
		rec := httptest.NewRecorder()

		handler.GetLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Error.Message, "invalid syntax")
	})

	t.Run("returns error when loan not found", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("GetLoan", mock.Anything, testOwnerID, int64(2)).Return((*loan.Loan)(nil), apperrors.ErrNotFound)

		req := authedRequest(http.MethodGet, "/loans/2", "", map[string]string{"loanID": "2"})
		rec := httptest.NewRecorder()

		handler.GetLoan(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Resource not found.", resp.Error.Message)
	})

	t.Run("returns internal server error for unexpected errors", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("GetLoan", mock.Anything, testOwnerID, int64(3)).Return((*loan.Loan)(nil), errors.New("unexpected error"))

		req := authedRequest(http.MethodGet, "/loans/3", "", map[string]string{"loanID": "3"})
		rec := httptest.NewRecorder()

		handler.GetLoan(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestLoanHandlerListLoans(t *testing.T) {
	mockService := new(MockLoanService)
	handler := NewLoanHandler(mockService, testLogger)

	listing := loan.Listing{
		Loan:     sampleHandlerLoan(),
		Customer: loan.CustomerRef{Name: "Asha Stores", Phone: "+919876543210"},
	}
	mockService.On("ListLoans", mock.Anything, testOwnerID).Return([]loan.Listing{listing}, nil)

	req := authedRequest(http.MethodGet, "/loans", "", nil)
	rec := httptest.NewRecorder()

	handler.ListLoans(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.LoanResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, "Asha Stores", resp[0].CustomerName)
	assert.Equal(t, "+919876543210", resp[0].CustomerPhone)
	mockService.AssertExpectations(t)
}

func TestLoanHandlerUpdateStatus(t *testing.T) {
	t.Run("successfully updates the status", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		updated := sampleHandlerLoan()
		updated.Status = loan.StatusOverdue
		mockService.On("UpdateStatus", mock.Anything, testOwnerID, int64(123), loan.StatusOverdue).Return(updated, nil)

		req := authedRequest(http.MethodPut, "/loans/123", `{"status":"overdue"}`, map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoanResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "overdue", resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects an unknown status value", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		req := authedRequest(http.MethodPut, "/loans/123", `{"status":"cancelled"}`, map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoanHandlerRecordRepayment(t *testing.T) {
	t.Run("successfully records a repayment", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		updated := sampleHandlerLoan()
		updated.Balance = 600
		receipt := &loan.Receipt{Amount: 400, Balance: 600, PaidAt: time.Now()}
		mockService.On("RecordRepayment", mock.Anything, testOwnerID, int64(123), 400.0).Return(updated, receipt, nil)

		req := authedRequest(http.MethodPost, "/loans/123/repayments", `{"amount":"400"}`, map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.RecordRepayment(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RepaymentResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Repayment recorded", resp.Message)
		assert.Equal(t, "400.00", resp.Amount)
		assert.Equal(t, "600.00", resp.Balance)
		assert.Equal(t, "600.00", resp.Loan.Balance)
		mockService.AssertExpectations(t)
	})

	t.Run("maps an excessive amount to 400", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("RecordRepayment", mock.Anything, testOwnerID, int64(123), 700.0).
			Return(nil, nil, apperrors.ErrInvalidRepaymentAmount)

		req := authedRequest(http.MethodPost, "/loans/123/repayments", `{"amount":"700"}`, map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.RecordRepayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps an already paid loan to 400", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		mockService.On("RecordRepayment", mock.Anything, testOwnerID, int64(123), 10.0).
			Return(nil, nil, apperrors.ErrLoanAlreadyPaid)

		req := authedRequest(http.MethodPost, "/loans/123/repayments", `{"amount":"10"}`, map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.RecordRepayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a non-numeric amount", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(mockService, testLogger)

		req := authedRequest(http.MethodPost, "/loans/123/repayments", `{"amount":"lots"}`, map[string]string{"loanID": "123"})
		rec := httptest.NewRecorder()

		handler.RecordRepayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "RecordRepayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoanHandlerGetSummary(t *testing.T) {
	mockService := new(MockLoanService)
	handler := NewLoanHandler(mockService, testLogger)

	mockService.On("GetSummary", mock.Anything, testOwnerID).Return(loan.Summary{
		TotalLoaned:      3500,
		TotalCollected:   900,
		OverdueAmount:    1500,
		AvgRepaymentTime: 20,
	}, nil)

	req := authedRequest(http.MethodGet, "/loans/summary", "", nil)
	rec := httptest.NewRecorder()

	handler.GetSummary(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.SummaryResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "3500.00", resp.TotalLoaned)
	assert.Equal(t, "900.00", resp.TotalCollected)
	assert.Equal(t, "1500.00", resp.OverdueAmount)
	assert.InDelta(t, 20.0, resp.AvgRepaymentTime, 0.001)
	mockService.AssertExpectations(t)
}

func TestLoanHandlerListOverdue(t *testing.T) {
	mockService := new(MockLoanService)
	handler := NewLoanHandler(mockService, testLogger)

	dueDate := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	mockService.On("ListOverdueLoans", mock.Anything, testOwnerID, mock.AnythingOfType("time.Time")).
		Return([]loan.OverdueLoan{
			{CustomerID: 3, ItemDescription: "rice", LoanAmount: 1000, Balance: 600, DueDate: dueDate, OverdueDays: 10},
		}, nil)

	req := authedRequest(http.MethodGet, "/loans/overdue", "", nil)
	rec := httptest.NewRecorder()

	handler.ListOverdue(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.OverdueLoanResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, 10, resp[0].OverdueDays)
	assert.Equal(t, "600.00", resp[0].Balance)
	mockService.AssertExpectations(t)
}
