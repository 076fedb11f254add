package dto

import (
	"credikhaata/internal/domain/loan"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	CustomerID      int64   `json:"customerId"`
	ItemDescription string  `json:"itemDescription"`
	LoanAmount      float64 `json:"loanAmount"`
	DueDate         string  `json:"dueDate"`
	Frequency       string  `json:"frequency"`
	InterestRate    float64 `json:"interestRate"`
	GraceDays       int     `json:"graceDays"`
}

func (r *CreateLoanRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId is required")
	}
	if r.ItemDescription == "" {
		return fmt.Errorf("itemDescription is required")
	}
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loanAmount must be greater than zero")
	}
	if _, err := r.DueDateValue(); err != nil {
		return err
	}
	if _, err := loan.ParseFrequency(r.Frequency); err != nil {
		return fmt.Errorf("frequency must be 'bi-weekly' or 'monthly'")
	}
	return nil
}

// DueDateValue parses the wire-format due date. Handlers use it instead of
// re-parsing the string after validation.
func (r *CreateLoanRequest) DueDateValue() (time.Time, error) {
	dueDate, err := time.Parse(time.RFC3339[:10], r.DueDate)
	if err != nil || r.DueDate == "" {
		return time.Time{}, fmt.Errorf("invalid dueDate format (use YYYY-MM-DD): %w", err)
	}
	return dueDate, nil
}

type RecordRepaymentRequest struct {
	Amount string `json:"amount"`
}

func (r *RecordRepaymentRequest) Validate() error {
	if _, err := decimal.NewFromString(r.Amount); err != nil || r.Amount == "" {
		return fmt.Errorf("invalid repayment amount: %w", err)
	}
	return nil
}

type UpdateLoanStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateLoanStatusRequest) Validate() error {
	if _, err := loan.ParseStatus(r.Status); err != nil {
		return fmt.Errorf("status must be one of 'pending', 'paid', 'overdue'")
	}
	return nil
}

type LoanResponse struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customerId"`
	CustomerName    string    `json:"customerName,omitempty"`
	CustomerPhone   string    `json:"customerPhone,omitempty"`
	ItemDescription string    `json:"itemDescription"`
	LoanAmount      string    `json:"loanAmount"`
	IssueDate       string    `json:"issueDate"`
	DueDate         string    `json:"dueDate"`
	Frequency       string    `json:"frequency"`
	InterestRate    string    `json:"interestRate"`
	GraceDays       int       `json:"graceDays"`
	Balance         string    `json:"balance"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type RepaymentResponse struct {
	Message string       `json:"message"`
	Amount  string       `json:"amount"`
	Balance string       `json:"balance"`
	PaidAt  time.Time    `json:"paidAt"`
	Loan    LoanResponse `json:"loan"`
}

type SummaryResponse struct {
	TotalLoaned      string  `json:"totalLoaned"`
	TotalCollected   string  `json:"totalCollected"`
	OverdueAmount    string  `json:"overdueAmount"`
	AvgRepaymentTime float64 `json:"avgRepaymentTime"`
}

type OverdueLoanResponse struct {
	CustomerID      string `json:"customerId"`
	ItemDescription string `json:"itemDescription"`
	LoanAmount      string `json:"loanAmount"`
	Balance         string `json:"balance"`
	DueDate         string `json:"dueDate"`
	OverdueDays     int    `json:"overdueDays"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
	OwnerID  int64  `json:"ownerId"`
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:              strconv.FormatInt(l.ID, 10),
		CustomerID:      strconv.FormatInt(l.CustomerID, 10),
		ItemDescription: l.ItemDescription,
		LoanAmount:      formatMoney(l.LoanAmount),
		IssueDate:       l.IssueDate.Format(time.RFC3339[:10]),
		DueDate:         l.DueDate.Format(time.RFC3339[:10]),
		Frequency:       string(l.Frequency),
		InterestRate:    decimal.NewFromFloat(l.InterestRate).String(),
		GraceDays:       l.GraceDays,
		Balance:         formatMoney(l.Balance),
		Status:          string(l.Status),
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// NewLoanListingResponse renders a loan together with the referenced
// customer's name and phone, matching what the list endpoint returns.
func NewLoanListingResponse(listing loan.Listing) LoanResponse {
	resp := NewLoanResponse(listing.Loan)
	resp.CustomerName = listing.Customer.Name
	resp.CustomerPhone = listing.Customer.Phone
	return resp
}

func NewRepaymentResponse(l *loan.Loan, receipt *loan.Receipt) RepaymentResponse {
	return RepaymentResponse{
		Message: "Repayment recorded",
		Amount:  formatMoney(receipt.Amount),
		Balance: formatMoney(receipt.Balance),
		PaidAt:  receipt.PaidAt,
		Loan:    NewLoanResponse(l),
	}
}

func NewSummaryResponse(s loan.Summary) SummaryResponse {
	return SummaryResponse{
		TotalLoaned:      formatMoney(s.TotalLoaned),
		TotalCollected:   formatMoney(s.TotalCollected),
		OverdueAmount:    formatMoney(s.OverdueAmount),
		AvgRepaymentTime: s.AvgRepaymentTime,
	}
}

func NewOverdueLoanResponse(o loan.OverdueLoan) OverdueLoanResponse {
	return OverdueLoanResponse{
		CustomerID:      strconv.FormatInt(o.CustomerID, 10),
		ItemDescription: o.ItemDescription,
		LoanAmount:      formatMoney(o.LoanAmount),
		Balance:         formatMoney(o.Balance),
		DueDate:         o.DueDate.Format(time.RFC3339[:10]),
		OverdueDays:     o.OverdueDays,
	}
}
