package handlers

import (
	"errors"
	"strconv"

	"ventamart/internal/common"

	"github.com/labstack/echo/v4"
)

// parsePagination reads limit/offset query params and applies the shared
// bounds: default 50/0, limit capped at 500, offset non-negative.
func parsePagination(c echo.Context) (int, int, error) {
	limit := 0
	offset := 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil {
			offset = o
		}
	}
	return common.ValidatePaginationParams(limit, offset)
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses:
// validation 400, not-found 404, insufficient stock 409, infrastructure 503.
func respondDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return common.SendClientError(c, err.Error())
	case errors.Is(err, common.ErrProductNotFound):
		return common.SendNotFoundError(c, "product")
	case errors.Is(err, common.ErrCustomerNotFound):
		return common.SendNotFoundError(c, "customer")
	case errors.Is(err, common.ErrOrderNotFound):
		return common.SendNotFoundError(c, "order")
	case errors.Is(err, common.ErrInsufficientStock):
		return common.SendConflictError(c, err.Error())
	case common.IsDependencyError(err):
		return common.SendDependencyError(c, err.Error())
	default:
		return common.SendServerError(c, err.Error())
	}
}
