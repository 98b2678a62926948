package handlers

import (
	"net/http"
	"strconv"

	"ventamart/internal/common"
	"ventamart/internal/models"
	"ventamart/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for the product catalog
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{
		productService: productService,
	}
}

type productRequest struct {
	Code          string  `json:"code"`
	Barcode       *string `json:"barcode"`
	Description   string  `json:"description"`
	UnitPrice     float64 `json:"unit_price"`
	Stock         int     `json:"stock"`
	IVA           bool    `json:"iva"`
	TaxPercentage float64 `json:"tax_percentage"`
}

func (r *productRequest) toModel() *models.Product {
	return &models.Product{
		Code:          r.Code,
		Barcode:       r.Barcode,
		Description:   r.Description,
		UnitPrice:     r.UnitPrice,
		Stock:         r.Stock,
		IVA:           r.IVA,
		TaxPercentage: r.TaxPercentage,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product := req.toModel()
	if err := h.productService.Create(ctx, product); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, product)
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	products, err := h.productService.List(ctx, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetByID(ctx, productID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if product == nil {
		return common.SendNotFoundError(c, "product")
	}

	return c.JSON(http.StatusOK, product)
}

// GetProductByCode handles GET /products/code/:code
func (h *ProductHandlers) GetProductByCode(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.Param("code")
	if err := common.ValidateRequiredString(code, "code"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetByCode(ctx, code)
	if err != nil {
		return respondDomainError(c, err)
	}
	if product == nil {
		return common.SendNotFoundError(c, "product")
	}

	return c.JSON(http.StatusOK, product)
}

// GetProductByBarcode handles GET /products/barcode/:barcode
func (h *ProductHandlers) GetProductByBarcode(c echo.Context) error {
	ctx := c.Request().Context()

	barcode := c.Param("barcode")
	if err := common.ValidateRequiredString(barcode, "barcode"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetByBarcode(ctx, barcode)
	if err != nil {
		return respondDomainError(c, err)
	}
	if product == nil {
		return common.SendNotFoundError(c, "product")
	}

	return c.JSON(http.StatusOK, product)
}

// GetProductByDescription handles GET /products/description/:description
func (h *ProductHandlers) GetProductByDescription(c echo.Context) error {
	ctx := c.Request().Context()

	description := c.Param("description")
	if err := common.ValidateRequiredString(description, "description"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetByDescription(ctx, description)
	if err != nil {
		return respondDomainError(c, err)
	}
	if product == nil {
		return common.SendNotFoundError(c, "product")
	}

	return c.JSON(http.StatusOK, product)
}

// LookupProducts handles POST /products/lookup (batch resolve by codes)
func (h *ProductHandlers) LookupProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Codes []string `json:"codes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.Codes) == 0 {
		return common.SendValidationError(c, "codes", "A list of product codes is required")
	}

	byCode, err := h.productService.GetByCodes(ctx, req.Codes)
	if err != nil {
		return respondDomainError(c, err)
	}

	products := make([]*models.Product, 0, len(req.Codes))
	for _, code := range req.Codes {
		products = append(products, byCode[code])
	}
	return c.JSON(http.StatusOK, products)
}

// SearchProducts handles GET /products/search
func (h *ProductHandlers) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.ProductSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	products, err := h.productService.Search(ctx, filter)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product := req.toModel()
	product.ID = productID
	if err := h.productService.Update(ctx, product); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

// UpdateProductStock handles PUT /products/stock/:code. The body carries the
// previously committed and the newly requested quantity; the applied delta
// is oldQuantity - newQuantity, rejected when it would drive stock negative.
func (h *ProductHandlers) UpdateProductStock(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.Param("code")
	if err := common.ValidateRequiredString(code, "code"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		OldQuantity *int `json:"old_quantity"`
		NewQuantity *int `json:"new_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.OldQuantity == nil || req.NewQuantity == nil {
		return common.SendValidationError(c, "quantities", "old_quantity and new_quantity are required")
	}

	product, err := h.productService.AdjustStockFromQuantities(ctx, code, *req.OldQuantity, *req.NewQuantity)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.Delete(ctx, productID); err != nil {
		return respondDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}
