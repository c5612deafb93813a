// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles confirmation, history and tracking endpoints
type OrderHandler struct {
	orderService *order.Service
	sessions     *SessionCookie
	logger       *logrus.Entry
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, sessions *SessionCookie, logger *logrus.Entry) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		sessions:     sessions,
		logger:       logger,
	}
}

// GetConfirmation handles GET /orders/confirmation. The snapshot is returned once.
func (h *OrderHandler) GetConfirmation(c *gin.Context) {
	snapshot, err := h.orderService.Confirmation(c.Request.Context(), h.sessions.Get(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order confirmation retrieved successfully",
		"data":    snapshot,
	})
}

// GetOrders handles GET /orders?status=
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	status := c.DefaultQuery("status", order.StatusFilterAll)
	orders, err := h.orderService.History(c.Request.Context(), userID, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entries := make([]order.HistoryEntry, 0, len(orders))
	for i := range orders {
		entries = append(entries, order.NewHistoryEntry(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    entries,
		"total":   len(entries),
		"status":  status,
	})
}

// GetOrder handles GET /orders/:number
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	o, err := h.orderService.GetForUser(c.Request.Context(), c.Param("number"), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// TrackOrder handles GET /orders/track/:number
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	tracking, err := h.orderService.Track(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tracking information retrieved successfully",
		"data":    tracking,
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:number/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("number"), &req, adminID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    order.NewTracking(o),
	})
}
