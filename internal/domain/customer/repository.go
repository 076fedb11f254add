package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrUpdateConflict = errors.New("update conflict detected")
)

// CustomerRepository persists customer profiles. Lookups take the owning
// shopkeeper's identity; a customer belonging to a different owner behaves
// as if it does not exist.
type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, ownerID, customerID int64) (*Customer, error)

	FindAllByOwner(ctx context.Context, ownerID int64) ([]*Customer, error)

	Delete(ctx context.Context, ownerID, customerID int64) error
}
