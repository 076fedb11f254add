package loan

import "time"

// Summary is the portfolio roll-up over all of an owner's loans.
type Summary struct {
	TotalLoaned      Money
	TotalCollected   Money
	OverdueAmount    Money
	AvgRepaymentTime float64
}

// OverdueLoan is the reporting projection of a past-due loan.
type OverdueLoan struct {
	CustomerID      int64
	ItemDescription string
	LoanAmount      Money
	Balance         Money
	DueDate         time.Time
	OverdueDays     int
}

// Summarize folds an owner's loans into portfolio totals.
//
// OverdueAmount sums balances of loans whose STORED status is overdue; it
// deliberately does not consult the clock, unlike the overdue listing.
// AvgRepaymentTime averages the contracted term (due date minus issue date,
// in days) of paid loans; no repayment timestamp is tracked, so it measures
// the agreed term rather than elapsed time to repay.
func Summarize(loans []*Loan) Summary {
	var s Summary
	var totalRepaymentDays float64
	var paidCount int

	for _, l := range loans {
		s.TotalLoaned += l.LoanAmount
		s.TotalCollected += l.LoanAmount - l.Balance

		if l.Status == StatusOverdue {
			s.OverdueAmount += l.Balance
		}

		if l.Status == StatusPaid {
			totalRepaymentDays += l.DueDate.Sub(l.IssueDate).Hours() / 24
			paidCount++
		}
	}

	if paidCount > 0 {
		s.AvgRepaymentTime = totalRepaymentDays / float64(paidCount)
	}
	return s
}

// ListOverdue projects the loans that are past due at the given instant,
// preserving input order. Loans stored as paid are never included, whatever
// their due date.
func ListOverdue(loans []*Loan, now time.Time) []OverdueLoan {
	overdue := make([]OverdueLoan, 0)
	for _, l := range loans {
		if l.Status != StatusPending && l.Status != StatusOverdue {
			continue
		}
		if !l.OverdueForReporting(now) {
			continue
		}
		overdue = append(overdue, OverdueLoan{
			CustomerID:      l.CustomerID,
			ItemDescription: l.ItemDescription,
			LoanAmount:      l.LoanAmount,
			Balance:         l.Balance,
			DueDate:         l.DueDate,
			OverdueDays:     l.OverdueDays(now),
		})
	}
	return overdue
}
