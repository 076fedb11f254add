package loan

import (
	"credikhaata/internal/pkg/apperrors"
	"fmt"
	"time"
)

type Money = float64

type LoanStatus string

const (
	StatusPending LoanStatus = "pending"
	StatusPaid    LoanStatus = "paid"
	StatusOverdue LoanStatus = "overdue"
)

type Frequency string

const (
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Loan is the unit of credit a shopkeeper extends against an item.
// LoanAmount, IssueDate, DueDate and Frequency are fixed at origination;
// only Balance and Status change afterwards, and only through
// ApplyRepayment and SetStatus.
type Loan struct {
	ID              int64
	CustomerID      int64
	OwnerID         int64
	ItemDescription string
	LoanAmount      Money
	IssueDate       time.Time
	DueDate         time.Time
	Frequency       Frequency
	InterestRate    Money
	GraceDays       int
	Balance         Money
	Status          LoanStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Receipt confirms a single applied repayment.
type Receipt struct {
	Amount  Money
	Balance Money
	PaidAt  time.Time
}

// CustomerRef carries the customer identity the loan listing shows next to
// each loan, saving callers a lookup per row.
type CustomerRef struct {
	Name  string
	Phone string
}

// Listing pairs a loan with its customer reference for list views.
type Listing struct {
	Loan     *Loan
	Customer CustomerRef
}

func ParseStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case StatusPending, StatusPaid, StatusOverdue:
		return LoanStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q is not one of pending, paid, overdue", apperrors.ErrInvalidStatus, s)
	}
}

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyBiWeekly, FrequencyMonthly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("%w: frequency %q is not one of bi-weekly, monthly", apperrors.ErrValidation, s)
	}
}

// NewLoan validates origination facts and opens the loan with the full
// amount outstanding. InterestRate and GraceDays are recorded but take no
// part in any balance computation.
func NewLoan(customerID, ownerID int64, itemDescription string, amount Money, dueDate time.Time, frequency Frequency, interestRate Money, graceDays int) (*Loan, error) {
	if itemDescription == "" {
		return nil, fmt.Errorf("%w: item description is required", apperrors.ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: loan amount must be greater than zero", apperrors.ErrValidation)
	}
	if dueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", apperrors.ErrValidation)
	}
	if _, err := ParseFrequency(string(frequency)); err != nil {
		return nil, err
	}
	if interestRate < 0 {
		interestRate = 0
	}
	if graceDays < 0 {
		graceDays = 0
	}

	now := time.Now()
	return &Loan{
		CustomerID:      customerID,
		OwnerID:         ownerID,
		ItemDescription: itemDescription,
		LoanAmount:      amount,
		IssueDate:       now,
		DueDate:         dueDate,
		Frequency:       frequency,
		InterestRate:    interestRate,
		GraceDays:       graceDays,
		Balance:         amount,
		Status:          StatusPending,
	}, nil
}

// ApplyRepayment is the only path by which Balance decreases. The amount
// must be positive and no greater than the outstanding balance; otherwise
// the loan is left untouched. Reaching exactly zero flips the loan to paid.
// A partial payment never changes the stored status, so an overdue loan
// stays overdue until fully settled.
func (l *Loan) ApplyRepayment(amount Money) (*Receipt, error) {
	if l.Status == StatusPaid {
		return nil, fmt.Errorf("%w: loan %d has no outstanding balance", apperrors.ErrLoanAlreadyPaid, l.ID)
	}
	if amount <= 0 || amount > l.Balance {
		return nil, fmt.Errorf("%w: %.2f is not within (0, %.2f]",
			apperrors.ErrInvalidRepaymentAmount, amount, l.Balance)
	}

	now := time.Now()
	l.Balance -= amount
	if l.Balance == 0 {
		l.Status = StatusPaid
	}
	l.UpdatedAt = now

	return &Receipt{Amount: amount, Balance: l.Balance, PaidAt: now}, nil
}

// SetStatus is an administrative override. Marking a loan paid zeroes the
// balance regardless of how much was actually collected; repayment-driven
// transitions should go through ApplyRepayment instead.
func (l *Loan) SetStatus(status LoanStatus) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	l.Status = status
	if status == StatusPaid {
		l.Balance = 0
	}
	l.UpdatedAt = time.Now()
	return nil
}

// OverdueForReporting reports whether the loan is past due at the given
// instant, independent of the stored status field. A loan stored as
// pending can still be overdue for reporting; a loan stored as paid never is.
func (l *Loan) OverdueForReporting(now time.Time) bool {
	return l.Status != StatusPaid && l.DueDate.Before(now)
}

// OverdueDays returns whole days elapsed since the due date for loans that
// qualify under OverdueForReporting, and 0 otherwise.
func (l *Loan) OverdueDays(now time.Time) int {
	if !l.OverdueForReporting(now) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}
