package handlers

import (
	"net/http"

	"ventamart/internal/common"
	"ventamart/internal/pricing"
	"ventamart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

type orderRequest struct {
	CustomerID string                  `json:"customer_id"`
	Items      []pricing.RequestedItem `json:"items"`
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customerID, err := common.ValidateUUID(req.CustomerID, "customer_id")
	if err != nil {
		return common.SendValidationError(c, "customer_id", err.Error())
	}
	if len(req.Items) == 0 {
		return common.SendValidationError(c, "items", "A list of order items is required")
	}
	for _, item := range req.Items {
		if err := common.ValidatePositiveInteger(item.Quantity, "quantity", 10000); err != nil {
			return common.SendValidationError(c, "quantity", err.Error())
		}
	}

	order, err := h.orderService.CreateOrder(ctx, customerID, req.Items)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

// GetOrders handles GET /orders
func (h *OrderHandlers) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	orders, err := h.orderService.ListOrders(ctx, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrderByID(ctx, orderID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if order == nil {
		return common.SendNotFoundError(c, "order")
	}

	return c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT /orders/:id
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.Items) == 0 {
		return common.SendValidationError(c, "items", "A list of order items is required")
	}
	for _, item := range req.Items {
		if err := common.ValidatePositiveInteger(item.Quantity, "quantity", 10000); err != nil {
			return common.SendValidationError(c, "quantity", err.Error())
		}
	}

	// customer_id is optional on update; the stored customer is kept when absent
	customerID := uuid.Nil
	if req.CustomerID != "" {
		customerID, err = common.ValidateUUID(req.CustomerID, "customer_id")
		if err != nil {
			return common.SendValidationError(c, "customer_id", err.Error())
		}
	}

	order, err := h.orderService.UpdateOrder(ctx, orderID, customerID, req.Items)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.orderService.DeleteOrder(ctx, orderID); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Order deleted successfully",
	})
}
