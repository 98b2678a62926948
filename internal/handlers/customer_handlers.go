package handlers

import (
	"net/http"

	"ventamart/internal/common"
	"ventamart/internal/models"
	"ventamart/internal/services"

	"github.com/labstack/echo/v4"
)

// CustomerHandlers handles HTTP requests for the customer directory
type CustomerHandlers struct {
	customerService services.CustomerService
}

// NewCustomerHandlers creates a new customer handlers instance
func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{
		customerService: customerService,
	}
}

type customerRequest struct {
	CompanyName    string  `json:"company_name"`
	Identification string  `json:"identification"`
	Address        string  `json:"address"`
	Phone          *string `json:"phone"`
	Email          string  `json:"email"`
}

func (r *customerRequest) toModel() *models.Customer {
	return &models.Customer{
		CompanyName:    r.CompanyName,
		Identification: r.Identification,
		Address:        r.Address,
		Phone:          r.Phone,
		Email:          r.Email,
	}
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer := req.toModel()
	if err := h.customerService.Create(ctx, customer); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, customer)
}

// ListCustomers handles GET /customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customers, err := h.customerService.List(ctx, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := common.ValidateUUID(c.Param("id"), "customer_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customerService.GetByID(ctx, customerID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if customer == nil {
		return common.SendNotFoundError(c, "customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// GetCustomerByIdentification handles GET /customers/identification/:identification
func (h *CustomerHandlers) GetCustomerByIdentification(c echo.Context) error {
	ctx := c.Request().Context()

	identification := c.Param("identification")
	if err := common.ValidateRequiredString(identification, "identification"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customerService.GetByIdentification(ctx, identification)
	if err != nil {
		return respondDomainError(c, err)
	}
	if customer == nil {
		return common.SendNotFoundError(c, "customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// GetCustomerByName handles GET /customers/name/:name
func (h *CustomerHandlers) GetCustomerByName(c echo.Context) error {
	ctx := c.Request().Context()

	name := c.Param("name")
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customerService.GetByName(ctx, name)
	if err != nil {
		return respondDomainError(c, err)
	}
	if customer == nil {
		return common.SendNotFoundError(c, "customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := common.ValidateUUID(c.Param("id"), "customer_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer := req.toModel()
	customer.ID = customerID
	if err := h.customerService.Update(ctx, customer); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomerByIdentification handles PUT /customers/identification/:identification
func (h *CustomerHandlers) UpdateCustomerByIdentification(c echo.Context) error {
	ctx := c.Request().Context()

	identification := c.Param("identification")
	if err := common.ValidateRequiredString(identification, "identification"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer, err := h.customerService.UpdateByIdentification(ctx, identification, req.toModel())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /customers/:id
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := common.ValidateUUID(c.Param("id"), "customer_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.customerService.Delete(ctx, customerID); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Customer deleted successfully",
	})
}
