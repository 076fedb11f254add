package loan

import (
	"credikhaata/internal/domain/customer"
	"credikhaata/internal/event"
	"credikhaata/internal/infrastructure/monitoring"
	"credikhaata/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CreateLoanParams carries the caller-supplied origination facts.
type CreateLoanParams struct {
	CustomerID      int64
	ItemDescription string
	Amount          Money
	DueDate         time.Time
	Frequency       Frequency
	InterestRate    Money
	GraceDays       int
}

type LoanService interface {
	CreateLoan(ctx context.Context, ownerID int64, params CreateLoanParams) (*Loan, error)

	GetLoan(ctx context.Context, ownerID, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, ownerID int64) ([]Listing, error)

	RecordRepayment(ctx context.Context, ownerID, loanID int64, amount Money) (*Loan, *Receipt, error)

	UpdateStatus(ctx context.Context, ownerID, loanID int64, status LoanStatus) (*Loan, error)

	GetSummary(ctx context.Context, ownerID int64) (Summary, error)

	ListOverdueLoans(ctx context.Context, ownerID int64, now time.Time) ([]OverdueLoan, error)
}

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	publisher       event.EventPublisher
	logger          *slog.Logger
}

func NewLoanService(r Repository, cs customer.CustomerService, pub event.EventPublisher, logger *slog.Logger) LoanService {
	if pub == nil {
		pub = event.NoopEventPublisher{}
	}
	return &loanServiceImpl{repo: r, customerService: cs, publisher: pub, logger: logger.With("component", "loanService")}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, ownerID int64, params CreateLoanParams) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", "ownerID", ownerID, "customerID", params.CustomerID)

	_, err := s.customerService.GetCustomer(ctx, ownerID, params.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found for loan creation", "customerID", params.CustomerID)
			return nil, fmt.Errorf("%w: customer %d not found", apperrors.ErrNotFound, params.CustomerID)
		}
		s.logger.ErrorContext(ctx, "Failed to verify customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	newLoan, err := NewLoan(params.CustomerID, ownerID, params.ItemDescription, params.Amount,
		params.DueDate, params.Frequency, params.InterestRate, params.GraceDays)
	if err != nil {
		s.logger.WarnContext(ctx, "Loan validation failed", slog.Any("error", err))
		return nil, err
	}

	createdLoan, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save loan: %v", apperrors.ErrInternalServer, err)
	}
	monitoring.RecordLoanCreated()

	if pubErr := s.publisher.PublishLoanCreated(ctx, event.LoanCreatedEvent{
		Timestamp: time.Now(),
		Payload:   newLoanEventPayload(createdLoan),
	}); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but failed to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Loan created successfully", "loanID", createdLoan.ID, "customerID", params.CustomerID)
	return createdLoan, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, ownerID, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Getting loan details", "loanID", loanID)

	l, err := s.repo.GetLoanByID(ctx, ownerID, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return l, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context, ownerID int64) ([]Listing, error) {
	s.logger.InfoContext(ctx, "Listing loans", "ownerID", ownerID)

	listings, err := s.repo.ListLoansWithCustomers(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list loans: %v", apperrors.ErrInternalServer, err)
	}
	return listings, nil
}

// RecordRepayment applies a repayment inside a transaction holding a row
// lock on the loan, so two concurrent repayments cannot both read the same
// balance and independently subtract.
func (s *loanServiceImpl) RecordRepayment(ctx context.Context, ownerID, loanID int64, amount Money) (updatedLoan *Loan, receipt *Receipt, err error) {
	s.logger.InfoContext(ctx, "Recording repayment", "loanID", loanID, "amount", amount)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		status := "success"
		switch {
		case errors.Is(err, apperrors.ErrInvalidRepaymentAmount):
			status = "failure_amount"
		case errors.Is(err, apperrors.ErrLoanAlreadyPaid):
			status = "failure_already_paid"
		case errors.Is(err, apperrors.ErrNotFound):
			status = "failure_not_found"
		case err != nil:
			status = "failure_internal"
		}
		monitoring.RecordRepayment(status)

		if p := recover(); p != nil {
			s.logger.ErrorContext(ctx, "Panic occurred during repayment processing", "loanID", loanID, "panic", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			s.logger.ErrorContext(ctx, "Rolling back repayment transaction", slog.Any("error", err))
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	l, err := s.repo.FindLoanForUpdate(ctx, tx, ownerID, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: cannot record repayment, loan %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, nil, fmt.Errorf("%w: could not load loan for repayment: %v", apperrors.ErrInternalServer, err)
	}

	receipt, err = l.ApplyRepayment(amount)
	if err != nil {
		s.logger.WarnContext(ctx, "Repayment rejected", "loanID", loanID, "amount", amount, slog.Any("error", err))
		return nil, nil, err
	}

	if err = s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
		return nil, nil, fmt.Errorf("%w: could not persist repayment: %v", apperrors.ErrInternalServer, err)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("%w: could not commit repayment transaction: %v", apperrors.ErrInternalServer, err)
	}

	if pubErr := s.publisher.PublishRepaymentRecorded(ctx, event.RepaymentRecordedEvent{
		Timestamp: receipt.PaidAt,
		Amount:    receipt.Amount,
		Payload:   newLoanEventPayload(l),
	}); pubErr != nil {
		s.logger.ErrorContext(ctx, "Repayment recorded, but failed to publish event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Repayment recorded successfully", "loanID", loanID, "amount", amount, "balance", l.Balance)
	return l, receipt, nil
}

// UpdateStatus runs the read-modify-write under the same row lock as
// RecordRepayment. A plain read-then-save would race the nightly overdue
// job against live repayments and write a stale balance back.
func (s *loanServiceImpl) UpdateStatus(ctx context.Context, ownerID, loanID int64, status LoanStatus) (updatedLoan *Loan, err error) {
	s.logger.InfoContext(ctx, "Updating loan status", "loanID", loanID, "status", status)

	if _, err := ParseStatus(string(status)); err != nil {
		s.logger.WarnContext(ctx, "Invalid status requested", "status", status)
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if err != nil {
			s.logger.ErrorContext(ctx, "Rolling back status update transaction", slog.Any("error", err))
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	l, err := s.repo.FindLoanForUpdate(ctx, tx, ownerID, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found for status update", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("%w: failed to get loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	if err = l.SetStatus(status); err != nil {
		return nil, err
	}

	if err = s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
		return nil, fmt.Errorf("%w: failed to persist status update: %v", apperrors.ErrInternalServer, err)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit status update transaction: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.InfoContext(ctx, "Loan status updated", "loanID", loanID, "status", status)
	return l, nil
}

func (s *loanServiceImpl) GetSummary(ctx context.Context, ownerID int64) (Summary, error) {
	s.logger.InfoContext(ctx, "Computing portfolio summary", "ownerID", ownerID)

	loans, err := s.repo.ListLoansByOwner(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans for summary", slog.Any("error", err))
		return Summary{}, fmt.Errorf("%w: failed to list loans for summary: %v", apperrors.ErrInternalServer, err)
	}

	return Summarize(loans), nil
}

func (s *loanServiceImpl) ListOverdueLoans(ctx context.Context, ownerID int64, now time.Time) ([]OverdueLoan, error) {
	s.logger.InfoContext(ctx, "Listing overdue loans", "ownerID", ownerID)

	loans, err := s.repo.ListLoansByOwner(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans for overdue report", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list loans for overdue report: %v", apperrors.ErrInternalServer, err)
	}

	return ListOverdue(loans, now), nil
}

func newLoanEventPayload(l *Loan) event.LoanEventPayload {
	return event.LoanEventPayload{
		LoanID:          l.ID,
		CustomerID:      l.CustomerID,
		OwnerID:         l.OwnerID,
		ItemDescription: l.ItemDescription,
		LoanAmount:      l.LoanAmount,
		Balance:         l.Balance,
		Status:          string(l.Status),
		DueDate:         l.DueDate,
	}
}
