// internal/interfaces/http/handlers/receipt.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// ReceiptRenderer turns an order into a PDF document
type ReceiptRenderer interface {
	GenerateReceipt(o *order.Order) (*bytes.Buffer, error)
}

// ReceiptHandler handles receipt downloads
type ReceiptHandler struct {
	orderService *order.Service
	renderer     ReceiptRenderer
	logger       *logrus.Entry
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(orderService *order.Service, renderer ReceiptRenderer, logger *logrus.Entry) *ReceiptHandler {
	return &ReceiptHandler{
		orderService: orderService,
		renderer:     renderer,
		logger:       logger,
	}
}

// DownloadReceipt handles GET /orders/:number/receipt
func (h *ReceiptHandler) DownloadReceipt(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	// Other users' orders read as not found
	o, err := h.orderService.GetForUser(c.Request.Context(), c.Param("number"), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pdfBuffer, err := h.renderer.GenerateReceipt(o)
	if err != nil {
		h.logger.WithError(err).WithField("order_number", o.OrderNumber).Error("failed to generate receipt")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	// Set headers for PDF download
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.OrderNumber))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))

	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
