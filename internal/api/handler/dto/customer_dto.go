package dto

import (
	"credikhaata/internal/domain/customer"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type CreateCustomerRequest struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	TrustScore  int     `json:"trustScore"`
	CreditLimit float64 `json:"creditLimit"`
}

func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone cannot be empty")
	}
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if r.TrustScore < customer.MinTrustScore || r.TrustScore > customer.MaxTrustScore {
		return fmt.Errorf("trustScore must be between %d and %d", customer.MinTrustScore, customer.MaxTrustScore)
	}
	if r.CreditLimit < 0 {
		return fmt.Errorf("creditLimit cannot be negative")
	}
	return nil
}

type UpdateCustomerRequest struct {
	Name        *string  `json:"name,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Address     *string  `json:"address,omitempty"`
	TrustScore  *int     `json:"trustScore,omitempty"`
	CreditLimit *float64 `json:"creditLimit,omitempty"`
}

func (r *UpdateCustomerRequest) Validate() error {
	if r.Name == nil && r.Phone == nil && r.Address == nil && r.TrustScore == nil && r.CreditLimit == nil {
		return fmt.Errorf("at least one field must be provided")
	}
	if r.TrustScore != nil && (*r.TrustScore < customer.MinTrustScore || *r.TrustScore > customer.MaxTrustScore) {
		return fmt.Errorf("trustScore must be between %d and %d", customer.MinTrustScore, customer.MaxTrustScore)
	}
	if r.CreditLimit != nil && *r.CreditLimit < 0 {
		return fmt.Errorf("creditLimit cannot be negative")
	}
	return nil
}

func (r *UpdateCustomerRequest) ToUpdate() customer.CustomerUpdate {
	return customer.CustomerUpdate{
		Name:        r.Name,
		Phone:       r.Phone,
		Address:     r.Address,
		TrustScore:  r.TrustScore,
		CreditLimit: r.CreditLimit,
	}
}

type CustomerResponse struct {
	CustomerID  string    `json:"customerId"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	TrustScore  int       `json:"trustScore"`
	CreditLimit string    `json:"creditLimit"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	if c == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID:  strconv.FormatInt(c.CustomerID, 10),
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		TrustScore:  c.TrustScore,
		CreditLimit: formatMoney(c.CreditLimit),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
