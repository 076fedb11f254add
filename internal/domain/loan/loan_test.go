package loan

import (
	"credikhaata/internal/pkg/apperrors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLoan(t *testing.T) {
	dueDate := time.Now().AddDate(0, 1, 0)

	t.Run("should create a pending loan with the full amount outstanding", func(t *testing.T) {
		l, err := NewLoan(1, 1, "10kg rice bag", 1000, dueDate, FrequencyMonthly, 0, 0)
		assert.NoError(t, err)
		assert.NotNil(t, l)
		assert.Equal(t, 1000.0, l.LoanAmount)
		assert.Equal(t, 1000.0, l.Balance)
		assert.Equal(t, StatusPending, l.Status)
		assert.Equal(t, FrequencyMonthly, l.Frequency)
		assert.Equal(t, dueDate, l.DueDate)
		assert.False(t, l.IssueDate.IsZero())
	})

	t.Run("should error when item description is empty", func(t *testing.T) {
		l, err := NewLoan(1, 1, "", 1000, dueDate, FrequencyMonthly, 0, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Nil(t, l)
	})

	t.Run("should error when amount is not positive", func(t *testing.T) {
		_, err := NewLoan(1, 1, "groceries", 0, dueDate, FrequencyMonthly, 0, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = NewLoan(1, 1, "groceries", -50, dueDate, FrequencyMonthly, 0, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("should error when due date is missing", func(t *testing.T) {
		_, err := NewLoan(1, 1, "groceries", 1000, time.Time{}, FrequencyMonthly, 0, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("should error on unknown frequency", func(t *testing.T) {
		_, err := NewLoan(1, 1, "groceries", 1000, dueDate, Frequency("weekly"), 0, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("should clamp negative interest rate and grace days to zero", func(t *testing.T) {
		l, err := NewLoan(1, 1, "groceries", 1000, dueDate, FrequencyBiWeekly, -0.05, -3)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, l.InterestRate)
		assert.Equal(t, 0, l.GraceDays)
	})
}

func TestApplyRepayment(t *testing.T) {
	newTestLoan := func(t *testing.T, amount Money) *Loan {
		t.Helper()
		l, err := NewLoan(1, 1, "kirana supplies", amount, time.Now().AddDate(0, 1, 0), FrequencyMonthly, 0, 0)
		assert.NoError(t, err)
		return l
	}

	t.Run("should reduce the balance by the paid amount", func(t *testing.T) {
		l := newTestLoan(t, 1000)

		receipt, err := l.ApplyRepayment(400)
		assert.NoError(t, err)
		assert.Equal(t, 400.0, receipt.Amount)
		assert.Equal(t, 600.0, receipt.Balance)
		assert.Equal(t, 600.0, l.Balance)
		assert.Equal(t, StatusPending, l.Status)
		assert.False(t, receipt.PaidAt.IsZero())
	})

	t.Run("should flip the loan to paid when the balance reaches zero", func(t *testing.T) {
		l := newTestLoan(t, 1000)

		_, err := l.ApplyRepayment(400)
		assert.NoError(t, err)

		receipt, err := l.ApplyRepayment(600)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, receipt.Balance)
		assert.Equal(t, StatusPaid, l.Status)
	})

	t.Run("should reject an amount above the outstanding balance", func(t *testing.T) {
		l := newTestLoan(t, 1000)
		_, err := l.ApplyRepayment(400)
		assert.NoError(t, err)

		_, err = l.ApplyRepayment(700)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRepaymentAmount)
		assert.Equal(t, 600.0, l.Balance, "a rejected payment must leave the balance untouched")
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		l := newTestLoan(t, 1000)

		_, err := l.ApplyRepayment(0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRepaymentAmount)

		_, err = l.ApplyRepayment(-10)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRepaymentAmount)
		assert.Equal(t, 1000.0, l.Balance)
	})

	t.Run("should reject payments against a paid loan", func(t *testing.T) {
		l := newTestLoan(t, 500)
		_, err := l.ApplyRepayment(500)
		assert.NoError(t, err)

		_, err = l.ApplyRepayment(1)
		assert.ErrorIs(t, err, apperrors.ErrLoanAlreadyPaid)
	})

	t.Run("should keep an overdue loan overdue after a partial payment", func(t *testing.T) {
		l := newTestLoan(t, 1000)
		assert.NoError(t, l.SetStatus(StatusOverdue))

		_, err := l.ApplyRepayment(400)
		assert.NoError(t, err)
		assert.Equal(t, StatusOverdue, l.Status)

		_, err = l.ApplyRepayment(600)
		assert.NoError(t, err)
		assert.Equal(t, StatusPaid, l.Status)
	})
}

func TestSetStatus(t *testing.T) {
	t.Run("should reject an unknown status", func(t *testing.T) {
		l := &Loan{Status: StatusPending, Balance: 100}
		err := l.SetStatus(LoanStatus("cancelled"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
		assert.Equal(t, StatusPending, l.Status)
	})

	t.Run("should zero the balance when forced to paid", func(t *testing.T) {
		l := &Loan{Status: StatusPending, Balance: 750}
		assert.NoError(t, l.SetStatus(StatusPaid))
		assert.Equal(t, StatusPaid, l.Status)
		assert.Equal(t, 0.0, l.Balance)
	})

	t.Run("should keep the balance on other transitions", func(t *testing.T) {
		l := &Loan{Status: StatusPending, Balance: 750}
		assert.NoError(t, l.SetStatus(StatusOverdue))
		assert.Equal(t, StatusOverdue, l.Status)
		assert.Equal(t, 750.0, l.Balance)
	})
}

func TestOverdueForReporting(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("should flag a pending loan past its due date", func(t *testing.T) {
		l := &Loan{Status: StatusPending, DueDate: now.AddDate(0, 0, -5)}
		assert.True(t, l.OverdueForReporting(now))
	})

	t.Run("should flag a stored-overdue loan past its due date", func(t *testing.T) {
		l := &Loan{Status: StatusOverdue, DueDate: now.AddDate(0, 0, -5)}
		assert.True(t, l.OverdueForReporting(now))
	})

	t.Run("should never flag a paid loan", func(t *testing.T) {
		l := &Loan{Status: StatusPaid, DueDate: now.AddDate(0, 0, -30)}
		assert.False(t, l.OverdueForReporting(now))
	})

	t.Run("should not flag a loan due in the future or exactly now", func(t *testing.T) {
		future := &Loan{Status: StatusPending, DueDate: now.AddDate(0, 0, 3)}
		assert.False(t, future.OverdueForReporting(now))

		exact := &Loan{Status: StatusPending, DueDate: now}
		assert.False(t, exact.OverdueForReporting(now))
	})
}

func TestOverdueDays(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("should count whole days past due", func(t *testing.T) {
		l := &Loan{Status: StatusPending, DueDate: now.AddDate(0, 0, -10)}
		assert.Equal(t, 10, l.OverdueDays(now))
	})

	t.Run("should floor partial days", func(t *testing.T) {
		l := &Loan{Status: StatusPending, DueDate: now.Add(-36 * time.Hour)}
		assert.Equal(t, 1, l.OverdueDays(now))
	})

	t.Run("should return zero for loans that are not overdue", func(t *testing.T) {
		paid := &Loan{Status: StatusPaid, DueDate: now.AddDate(0, 0, -10)}
		assert.Equal(t, 0, paid.OverdueDays(now))

		current := &Loan{Status: StatusPending, DueDate: now.AddDate(0, 0, 2)}
		assert.Equal(t, 0, current.OverdueDays(now))
	})
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "paid", "overdue"} {
		s, err := ParseStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, LoanStatus(valid), s)
	}

	_, err := ParseStatus("active")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestParseFrequency(t *testing.T) {
	for _, valid := range []string{"bi-weekly", "monthly"} {
		f, err := ParseFrequency(valid)
		assert.NoError(t, err)
		assert.Equal(t, Frequency(valid), f)
	}

	_, err := ParseFrequency("weekly")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
