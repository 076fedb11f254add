package postgres

import (
	"credikhaata/internal/domain/customer"
	"credikhaata/internal/pkg/apperrors"
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

var customerColumnList = []string{
	"id", "owner_id", "name", "phone", "address", "trust_score", "credit_limit", "created_at", "updated_at",
}

func customerRow(c *customer.Customer) *pgxmock.Rows {
	return pgxmock.NewRows(customerColumnList).AddRow(
		c.CustomerID, c.OwnerID, c.Name, c.Phone, c.Address,
		c.TrustScore, c.CreditLimit, c.CreatedAt, c.UpdatedAt,
	)
}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewCustomerRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func sampleCustomer() *customer.Customer {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &customer.Customer{
		CustomerID:  3,
		OwnerID:     7,
		Name:        "Asha Stores",
		Phone:       "+91-9000000001",
		Address:     "12 Market Road",
		TrustScore:  7,
		CreditLimit: 5000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCustomerRepositorySave(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	t.Run("inserts a new customer and writes back the generated ID", func(t *testing.T) {
		c := sampleCustomer()
		c.CustomerID = 0
		now := time.Now()

		mockPool.ExpectQuery(`INSERT INTO customers`).
			WithArgs(c.OwnerID, c.Name, c.Phone, c.Address, c.TrustScore, c.CreditLimit).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

		assert.NoError(t, repo.Save(ctx, c))
		assert.Equal(t, int64(11), c.CustomerID)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("updates an existing customer", func(t *testing.T) {
		c := sampleCustomer()

		mockPool.ExpectExec(`UPDATE customers`).
			WithArgs(c.Name, c.Phone, c.Address, c.TrustScore, c.CreditLimit, c.CustomerID, c.OwnerID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Save(ctx, c))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("update against another owner's customer maps to not found", func(t *testing.T) {
		c := sampleCustomer()

		mockPool.ExpectExec(`UPDATE customers`).
			WithArgs(c.Name, c.Phone, c.Address, c.TrustScore, c.CreditLimit, c.CustomerID, c.OwnerID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.Save(ctx, c), customer.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("insert failure is wrapped as a database error", func(t *testing.T) {
		c := sampleCustomer()
		c.CustomerID = 0

		mockPool.ExpectQuery(`INSERT INTO customers`).
			WithArgs(c.OwnerID, c.Name, c.Phone, c.Address, c.TrustScore, c.CreditLimit).
			WillReturnError(context.DeadlineExceeded)

		assert.ErrorIs(t, repo.Save(ctx, c), apperrors.ErrDatabase)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestCustomerRepositoryFindByID(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	c := sampleCustomer()

	t.Run("found", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM customers`).
			WithArgs(c.CustomerID, c.OwnerID).
			WillReturnRows(customerRow(c))

		got, err := repo.FindByID(ctx, c.OwnerID, c.CustomerID)
		assert.NoError(t, err)
		assert.Equal(t, c.Name, got.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM customers`).
			WithArgs(int64(99), c.OwnerID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, c.OwnerID, 99)
		assert.ErrorIs(t, err, customer.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestCustomerRepositoryFindAllByOwner(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	c := sampleCustomer()

	t.Run("returns all customers for the owner", func(t *testing.T) {
		rows := customerRow(c).AddRow(
			int64(4), c.OwnerID, "Binod Tea Stall", "+91-9000000002", "14 Market Road",
			5, 2000.0, c.CreatedAt, c.UpdatedAt,
		)
		mockPool.ExpectQuery(`SELECT (.+) FROM customers`).
			WithArgs(c.OwnerID).
			WillReturnRows(rows)

		customers, err := repo.FindAllByOwner(ctx, c.OwnerID)
		assert.NoError(t, err)
		assert.Len(t, customers, 2)
		assert.Equal(t, "Binod Tea Stall", customers[1].Name)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("returns an empty slice when the owner has no customers", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM customers`).
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows(customerColumnList))

		customers, err := repo.FindAllByOwner(ctx, 42)
		assert.NoError(t, err)
		assert.NotNil(t, customers)
		assert.Empty(t, customers)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestCustomerRepositoryDelete(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	c := sampleCustomer()

	t.Run("deletes the owner's customer", func(t *testing.T) {
		mockPool.ExpectExec(`DELETE FROM customers`).
			WithArgs(c.CustomerID, c.OwnerID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(ctx, c.OwnerID, c.CustomerID))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("zero rows affected maps to not found", func(t *testing.T) {
		mockPool.ExpectExec(`DELETE FROM customers`).
			WithArgs(int64(99), c.OwnerID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(ctx, c.OwnerID, 99), customer.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}
