package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// CustomerUpdate carries a partial profile update; nil fields are left as-is.
type CustomerUpdate struct {
	Name        *string
	Phone       *string
	Address     *string
	TrustScore  *int
	CreditLimit *float64
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, ownerID int64, name, phone, address string, trustScore int, creditLimit float64) (*Customer, error)
	GetCustomer(ctx context.Context, ownerID, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, ownerID int64) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, ownerID, customerID int64, update CustomerUpdate) (*Customer, error)
	DeleteCustomer(ctx context.Context, ownerID, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, ownerID int64, name, phone, address string, trustScore int, creditLimit float64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer", slog.Int64("ownerID", ownerID))

	cust, err := NewCustomer(ownerID, strings.TrimSpace(name), strings.TrimSpace(phone), strings.TrimSpace(address), trustScore, creditLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "Customer validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, ownerID, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, ownerID, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, ownerID int64) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list customers", slog.Int64("ownerID", ownerID))

	customers, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, ownerID, customerID int64, update CustomerUpdate) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to update customer", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, ownerID, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for update", slog.Int64("customerID", customerID))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		cust.Name = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil && strings.TrimSpace(*update.Phone) != "" {
		cust.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Address != nil && strings.TrimSpace(*update.Address) != "" {
		cust.Address = strings.TrimSpace(*update.Address)
	}
	if update.TrustScore != nil {
		if err := cust.SetTrustScore(*update.TrustScore); err != nil {
			return nil, err
		}
	}
	if update.CreditLimit != nil {
		if err := cust.SetCreditLimit(*update.CreditLimit); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to save updated customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully updated customer", slog.Int64("customerID", customerID))
	return cust, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, ownerID, customerID int64) error {
	s.logger.InfoContext(ctx, "Attempting to delete customer", slog.Int64("customerID", customerID))

	if err := s.repo.Delete(ctx, ownerID, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for delete", slog.Int64("customerID", customerID))
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully deleted customer", slog.Int64("customerID", customerID))
	return nil
}
