package batch

import (
	"credikhaata/internal/domain/loan"
	"credikhaata/internal/event"
	"credikhaata/internal/infrastructure/monitoring"
	"credikhaata/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MarkOverdueJob flips the stored status of past-due pending loans to
// overdue. It only writes the persisted status field; the report-time
// overdue evaluation stays a separate, clock-based computation.
type MarkOverdueJob struct {
	loanRepo    loan.Repository
	loanService loan.LoanService
	publisher   event.EventPublisher
	logger      *slog.Logger
}

func NewMarkOverdueJob(
	loanRepo loan.Repository,
	loanSvc loan.LoanService,
	pub event.EventPublisher,
	logger *slog.Logger,
) *MarkOverdueJob {
	if loanRepo == nil || loanSvc == nil || logger == nil {
		panic("MarkOverdueJob dependencies cannot be nil")
	}
	if pub == nil {
		pub = event.NoopEventPublisher{}
	}
	return &MarkOverdueJob{
		loanRepo:    loanRepo,
		loanService: loanSvc,
		publisher:   pub,
		logger:      logger.With("job", "MarkOverdue"),
	}
}

func (j *MarkOverdueJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting nightly overdue marking job.")

	pastDue, err := j.loanRepo.GetPastDuePendingLoans(ctx, startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to get past-due pending loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to get past-due loans: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched past-due pending loans.", slog.Int("count", len(pastDue)))

	if len(pastDue) == 0 {
		j.logger.InfoContext(ctx, "No past-due pending loans to process.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var markedCount, errorCount int32

	for _, l := range pastDue {
		wg.Add(1)
		go func(current *loan.Loan) {
			defer wg.Done()

			logCtx := j.logger.With(slog.Int64("loanID", current.ID))

			_, updateErr := j.loanService.UpdateStatus(ctx, current.OwnerID, current.ID, loan.StatusOverdue)
			if updateErr != nil {
				if errors.Is(updateErr, apperrors.ErrNotFound) {
					logCtx.WarnContext(ctx, "Loan not found during overdue marking", slog.Any("error", updateErr))
				} else {
					logCtx.ErrorContext(ctx, "Failed to mark loan overdue", slog.Any("error", updateErr))
					atomic.AddInt32(&errorCount, 1)
				}
				return
			}
			atomic.AddInt32(&markedCount, 1)
			monitoring.RecordLoanMarkedOverdue()

			if pubErr := j.publisher.PublishLoanOverdue(ctx, event.LoanOverdueEvent{
				Timestamp: time.Now(),
				Payload: event.LoanEventPayload{
					LoanID:          current.ID,
					CustomerID:      current.CustomerID,
					OwnerID:         current.OwnerID,
					ItemDescription: current.ItemDescription,
					LoanAmount:      current.LoanAmount,
					Balance:         current.Balance,
					Status:          string(loan.StatusOverdue),
					DueDate:         current.DueDate,
				},
			}); pubErr != nil {
				logCtx.ErrorContext(ctx, "Loan marked overdue, but failed to publish event", slog.Any("error", pubErr))
			}
		}(l)
	}

	wg.Wait()
	duration := time.Since(startTime)
	summaryLog := j.logger.With(
		slog.Duration("duration", duration),
		slog.Int("past_due_loans", len(pastDue)),
		slog.Int("loans_marked_overdue", int(atomic.LoadInt32(&markedCount))),
		slog.Int("errors_encountered", int(atomic.LoadInt32(&errorCount))),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Overdue marking job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Overdue marking job finished successfully.")
	return nil
}
