package postgres

import (
	"credikhaata/internal/domain/loan"
	"credikhaata/internal/infrastructure/monitoring"
	"credikhaata/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const loanColumns = `id, customer_id, owner_id, item_description, loan_amount, issue_date, due_date, frequency, interest_rate, grace_days, balance, status, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.OwnerID, &l.ItemDescription, &l.LoanAmount,
		&l.IssueDate, &l.DueDate, &l.Frequency, &l.InterestRate, &l.GraceDays,
		&l.Balance, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	query := `
        INSERT INTO loans (customer_id, owner_id, item_description, loan_amount, issue_date, due_date, frequency, interest_rate, grace_days, balance, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING ` + loanColumns

	status := "success"
	startTime := time.Now()

	created, err := scanLoan(r.db.QueryRow(ctx, query,
		newLoan.CustomerID, newLoan.OwnerID, newLoan.ItemDescription, newLoan.LoanAmount,
		newLoan.IssueDate, newLoan.DueDate, newLoan.Frequency, newLoan.InterestRate,
		newLoan.GraceDays, newLoan.Balance, newLoan.Status,
	))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateLoan", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, ownerID, loanID int64) (*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1 AND owner_id = $2`

	status := "success"
	startTime := time.Now()

	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID, ownerID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) ListLoansByOwner(ctx context.Context, ownerID int64) ([]*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE owner_id = $1
        ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) ListLoansWithCustomers(ctx context.Context, ownerID int64) ([]loan.Listing, error) {
	query := `
        SELECT l.id, l.customer_id, l.owner_id, l.item_description, l.loan_amount, l.issue_date, l.due_date, l.frequency, l.interest_rate, l.grace_days, l.balance, l.status, l.created_at, l.updated_at,
               COALESCE(c.name, ''), COALESCE(c.phone, '')
        FROM loans l
        LEFT JOIN customers c ON c.id = l.customer_id AND c.owner_id = l.owner_id
        WHERE l.owner_id = $1
        ORDER BY l.id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans with customers", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	listings := make([]loan.Listing, 0)
	for rows.Next() {
		var l loan.Loan
		var ref loan.CustomerRef
		err := rows.Scan(
			&l.ID, &l.CustomerID, &l.OwnerID, &l.ItemDescription, &l.LoanAmount,
			&l.IssueDate, &l.DueDate, &l.Frequency, &l.InterestRate, &l.GraceDays,
			&l.Balance, &l.Status, &l.CreatedAt, &l.UpdatedAt,
			&ref.Name, &ref.Phone,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan listing row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		listings = append(listings, loan.Listing{Loan: &l, Customer: ref})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return listings, nil
}

func (r *LoanRepository) FindLoanForUpdate(ctx context.Context, tx pgx.Tx, ownerID, loanID int64) (*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1 AND owner_id = $2
        FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, loanID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for update", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	query := `
        UPDATE loans
        SET balance = $1, status = $2, updated_at = NOW()
        WHERE id = $3 AND owner_id = $4`

	cmdTag, err := tx.Exec(ctx, query, l.Balance, l.Status, l.ID, l.OwnerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan in tx", "loan_id", l.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) GetPastDuePendingLoans(ctx context.Context, asOf time.Time) ([]*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE status = $1 AND due_date < $2
        ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, loan.StatusPending, asOf)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query past-due pending loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}
