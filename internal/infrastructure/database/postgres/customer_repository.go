package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credikhaata/internal/domain/customer"
	"credikhaata/internal/infrastructure/monitoring"
	"credikhaata/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, owner_id, name, phone, address, trust_score, credit_limit, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.CustomerID, &c.OwnerID, &c.Name, &c.Phone, &c.Address,
		&c.TrustScore, &c.CreditLimit, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save inserts a new customer profile or updates an existing one. New
// customers get their generated ID written back into the struct.
func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	status := "success"
	startTime := time.Now()

	var err error
	if c.CustomerID == 0 {
		query := `
            INSERT INTO customers (owner_id, name, phone, address, trust_score, credit_limit, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
            RETURNING id, created_at, updated_at`
		err = r.db.QueryRow(ctx, query,
			c.OwnerID, c.Name, c.Phone, c.Address, c.TrustScore, c.CreditLimit,
		).Scan(&c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	} else {
		query := `
            UPDATE customers
            SET name = $1, phone = $2, address = $3, trust_score = $4, credit_limit = $5, updated_at = NOW()
            WHERE id = $6 AND owner_id = $7`
		cmdTag, execErr := r.db.Exec(ctx, query,
			c.Name, c.Phone, c.Address, c.TrustScore, c.CreditLimit, c.CustomerID, c.OwnerID,
		)
		err = execErr
		if err == nil && cmdTag.RowsAffected() == 0 {
			err = customer.ErrNotFound
		}
	}

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("SaveCustomer", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			r.logger.WarnContext(ctx, "Customer not found on save", "customer_id", c.CustomerID)
			return customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to save customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to save customer: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, ownerID, customerID int64) (*customer.Customer, error) {
	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE id = $1 AND owner_id = $2`

	status := "success"
	startTime := time.Now()

	c, err := scanCustomer(r.db.QueryRow(ctx, query, customerID, ownerID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindCustomerByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find customer by ID", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("%w: failed to find customer: %w", apperrors.ErrDatabase, err)
	}
	return c, nil
}

func (r *CustomerRepository) FindAllByOwner(ctx context.Context, ownerID int64) ([]*customer.Customer, error) {
	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE owner_id = $1
        ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", "error", err)
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: customer rows iteration failed: %w", apperrors.ErrDatabase, err)
	}
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, ownerID, customerID int64) error {
	query := `DELETE FROM customers WHERE id = $1 AND owner_id = $2`

	status := "success"
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, query, customerID, ownerID)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("DeleteCustomer", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete customer", "customer_id", customerID, "error", err)
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Customer not found on delete", "customer_id", customerID)
		return customer.ErrNotFound
	}
	return nil
}
