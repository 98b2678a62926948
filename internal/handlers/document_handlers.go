package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"ventamart/internal/common"
	"ventamart/internal/models"
	"ventamart/internal/services"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

const documentBucket = "order-documents"

// DocumentHandlers renders order documents as PDF and stores them in object storage.
type DocumentHandlers struct {
	orderService services.OrderServiceInterface
	minioSvc     services.MinioService
}

// NewDocumentHandlers creates a new document handlers instance. minioSvc may be
// nil when object storage is not configured; requests then fail with 503.
func NewDocumentHandlers(orderService services.OrderServiceInterface, minioSvc services.MinioService) *DocumentHandlers {
	return &DocumentHandlers{
		orderService: orderService,
		minioSvc:     minioSvc,
	}
}

// GenerateOrderDocument handles POST /orders/:id/document
func (h *DocumentHandlers) GenerateOrderDocument(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if h.minioSvc == nil {
		return common.SendDependencyError(c, "Document storage is not configured")
	}

	order, err := h.orderService.GetOrderByID(ctx, orderID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if order == nil {
		return common.SendNotFoundError(c, "order")
	}

	pdfBytes, err := renderOrderPDF(order)
	if err != nil {
		return common.SendServerError(c, fmt.Sprintf("Failed to generate PDF: %v", err))
	}
	if len(pdfBytes) == 0 {
		return common.SendServerError(c, "Generated PDF is empty")
	}

	objectName := fmt.Sprintf("%s.pdf", order.ID.String())

	if err := h.minioSvc.EnsureBucketExists(ctx, documentBucket); err != nil {
		return common.SendDependencyError(c, "Failed to prepare document storage: "+err.Error())
	}

	err = h.minioSvc.UploadDocument(ctx, documentBucket, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf")
	if err != nil {
		return common.SendDependencyError(c, "Failed to upload PDF to storage: "+err.Error())
	}

	pdfURL, err := h.minioSvc.GetPresignedURL(ctx, documentBucket, objectName, 24*time.Hour)
	if err != nil {
		return common.SendDependencyError(c, "Failed to generate download URL: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Document generated and uploaded successfully",
		"pdf_url":    pdfURL,
		"expires_in": "24 hours",
	})
}

// renderOrderPDF lays out the order as a single-page A4 document.
func renderOrderPDF(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)

	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "VENTAMART ORDER")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order Number: %s", order.Number))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Order Date: %s", order.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(8)

	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, order.CustomerName)
	pdf.Ln(10)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)

	headers := []string{"Code", "Description", "Qty", "Rate", "Tax %", "Amount"}
	colWidths := []float64{25, 60, 15, 25, 20, 25}

	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)

	for _, item := range order.Items {
		desc := item.Description
		if barcode := common.SafeString(item.Barcode); barcode != "" {
			desc = fmt.Sprintf("%s [%s]", desc, barcode)
		}
		pdf.CellFormat(colWidths[0], 8, item.ProductCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 8, fmt.Sprintf("%.2f", item.TaxPercentage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], 8, fmt.Sprintf("%.2f", item.Subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(145, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", order.Subtotal), "", 0, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(145, 5, "Tax:", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 5, fmt.Sprintf("%.2f", order.TaxTotal), "", 0, "R", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(220, 20, 60)
	pdf.CellFormat(145, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", order.Total), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetTextColor(128, 128, 128)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, "This is a computer generated document")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}
