package handlers

import (
	"context"
	"net/http"
	"strconv"

	"ventamart/internal/common"
	"ventamart/internal/models"

	"github.com/labstack/echo/v4"
)

// LowStockReporter is the slice of the low-stock service the report
// endpoint needs.
type LowStockReporter interface {
	LowStockReport(ctx context.Context, threshold int) ([]*models.Product, bool, error)
	CheckLowStock(ctx context.Context, threshold int) ([]*models.Product, error)
}

// LowStockHandlers serves the low-stock report maintained by the
// background check job.
type LowStockHandlers struct {
	lowStockSvc      LowStockReporter
	defaultThreshold int
}

// NewLowStockHandlers creates a new low stock handlers instance
func NewLowStockHandlers(lowStockSvc LowStockReporter, defaultThreshold int) *LowStockHandlers {
	return &LowStockHandlers{
		lowStockSvc:      lowStockSvc,
		defaultThreshold: defaultThreshold,
	}
}

// GetLowStockReport handles GET /products/low-stock. The cached report from
// the scheduled check is served when present; otherwise a fresh check runs.
func (h *LowStockHandlers) GetLowStockReport(c echo.Context) error {
	ctx := c.Request().Context()

	threshold := h.defaultThreshold
	custom := false
	if thresholdParam := c.QueryParam("threshold"); thresholdParam != "" {
		t, err := strconv.Atoi(thresholdParam)
		if err != nil || t <= 0 {
			return common.SendValidationError(c, "threshold", "threshold must be a positive integer")
		}
		threshold = t
		custom = true
	}

	var (
		products []*models.Product
		cached   bool
		err      error
	)
	if custom {
		// the cached report is computed with the configured threshold,
		// so a caller-supplied one always runs a fresh check
		products, err = h.lowStockSvc.CheckLowStock(ctx, threshold)
	} else {
		products, cached, err = h.lowStockSvc.LowStockReport(ctx, threshold)
	}
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products":  products,
		"count":     len(products),
		"threshold": threshold,
		"cached":    cached,
	})
}
