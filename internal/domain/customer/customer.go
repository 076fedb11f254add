package customer

import (
	"credikhaata/internal/pkg/apperrors"
	"fmt"
	"time"
)

const (
	MinTrustScore = 0
	MaxTrustScore = 10
)

type Customer struct {
	CustomerID  int64     `json:"customerId"`
	OwnerID     int64     `json:"-"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	TrustScore  int       `json:"trustScore"`
	CreditLimit float64   `json:"creditLimit"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCustomer(ownerID int64, name, phone, address string, trustScore int, creditLimit float64) (*Customer, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: customer name cannot be empty", apperrors.ErrValidation)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: customer phone cannot be empty", apperrors.ErrValidation)
	}
	if address == "" {
		return nil, fmt.Errorf("%w: customer address cannot be empty", apperrors.ErrValidation)
	}
	if trustScore < MinTrustScore || trustScore > MaxTrustScore {
		return nil, fmt.Errorf("%w: trust score must be between %d and %d", apperrors.ErrValidation, MinTrustScore, MaxTrustScore)
	}
	if creditLimit < 0 {
		return nil, fmt.Errorf("%w: credit limit cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	return &Customer{
		OwnerID:     ownerID,
		Name:        name,
		Phone:       phone,
		Address:     address,
		TrustScore:  trustScore,
		CreditLimit: creditLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Customer) SetTrustScore(score int) error {
	if score < MinTrustScore || score > MaxTrustScore {
		return fmt.Errorf("%w: trust score must be between %d and %d", apperrors.ErrValidation, MinTrustScore, MaxTrustScore)
	}
	c.TrustScore = score
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Customer) SetCreditLimit(limit float64) error {
	if limit < 0 {
		return fmt.Errorf("%w: credit limit cannot be negative", apperrors.ErrValidation)
	}
	c.CreditLimit = limit
	c.UpdatedAt = time.Now()
	return nil
}
