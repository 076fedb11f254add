package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repository is the ledger store for loans. Every lookup is scoped by the
// owning shopkeeper; a loan is never visible outside the identity that
// created it.
type Repository interface {
	CreateLoan(ctx context.Context, newLoan *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, ownerID, loanID int64) (*Loan, error)

	ListLoansByOwner(ctx context.Context, ownerID int64) ([]*Loan, error)

	// ListLoansWithCustomers joins in each loan's customer name and phone
	// for list views.
	ListLoansWithCustomers(ctx context.Context, ownerID int64) ([]Listing, error)

	// FindLoanForUpdate locks the loan row for the duration of the
	// transaction so concurrent repayments against the same loan are
	// serialized rather than lost.
	FindLoanForUpdate(ctx context.Context, tx pgx.Tx, ownerID, loanID int64) (*Loan, error)

	UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) error

	// GetPastDuePendingLoans feeds the nightly job that flips stored
	// status to overdue.
	GetPastDuePendingLoans(ctx context.Context, asOf time.Time) ([]*Loan, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
