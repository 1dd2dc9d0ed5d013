// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/order"
)

// InvoiceRenderer turns an order into a printable invoice
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
	RenderHTML(o *order.Order) (string, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orderService *order.Service
	renderer     InvoiceRenderer
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, renderer InvoiceRenderer) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		renderer:     renderer,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	o, ok := h.ownOrder(c)
	if !ok {
		return
	}
	h.writePDF(c, o)
}

// PreviewInvoice handles GET /orders/:id/invoice/preview, the HTML the PDF is
// rendered from
func (h *InvoiceHandler) PreviewInvoice(c *gin.Context) {
	o, ok := h.ownOrder(c)
	if !ok {
		return
	}

	html, err := h.renderer.RenderHTML(o)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to render invoice",
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// AdminGenerateInvoice handles GET /admin/orders/:id/invoice
func (h *InvoiceHandler) AdminGenerateInvoice(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writePDF(c, o)
}

// ownOrder loads the order named in the path if it belongs to the caller
func (h *InvoiceHandler) ownOrder(c *gin.Context) (*order.Order, bool) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return nil, false
	}
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return nil, false
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), principal.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return o, true
}

func (h *InvoiceHandler) writePDF(c *gin.Context, o *order.Order) {
	pdfBuffer, err := h.renderer.GenerateInvoice(o)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	// Set headers for PDF download
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.OrderNumber))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))

	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
