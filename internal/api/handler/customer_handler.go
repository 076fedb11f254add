package handler

import (
	"credikhaata/internal/api/handler/dto"
	"credikhaata/internal/domain/customer"
	"credikhaata/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("customerID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// CreateCustomer registers a new customer profile for the caller.
//
// @Summary Create a new customer
// @Description Registers a customer the shopkeeper can extend credit to, with a trust score (0-10) and credit limit.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request payload"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.CreateCustomer(r.Context(), ownerID, req.Name, req.Phone, req.Address, req.TrustScore, req.CreditLimit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(cust))
}

// ListCustomers returns all of the caller's customers.
//
// @Summary List customers
// @Description Returns every customer profile created by the authenticated shopkeeper.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "Customers successfully retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), ownerID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, dto.NewCustomerResponse(c))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCustomer retrieves a customer by ID.
//
// @Summary Retrieve customer details
// @Description Retrieves a customer profile by its ID, scoped to the caller.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.GetCustomer(r.Context(), ownerID, customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// UpdateCustomer applies a partial update to a customer profile.
//
// @Summary Update customer details
// @Description Updates any subset of a customer's name, phone, address, trust score and credit limit.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID"
// @Param request body dto.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} dto.CustomerResponse "Customer successfully updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID or payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.UpdateCustomer(r.Context(), ownerID, customerID, req.ToUpdate())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// DeleteCustomer removes a customer profile.
//
// @Summary Delete a customer
// @Description Deletes a customer profile by its ID, scoped to the caller.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} map[string]string "Customer successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerIDFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), ownerID, customerID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
}
