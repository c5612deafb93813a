// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	pricing     checkout.Pricing
	sessions    *SessionCookie
	logger      *logrus.Entry
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, pricing checkout.Pricing, sessions *SessionCookie, logger *logrus.Entry) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		pricing:     pricing,
		sessions:    sessions,
		logger:      logger,
	}
}

// CartResponse is a cart with its order summary
type CartResponse struct {
	*cart.Contents
	Summary checkout.Summary `json:"summary"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	contents, err := h.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondCart(c, "Cart retrieved successfully", contents)
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	count, err := h.cartService.GetItemCount(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contents, err := h.cartService.AddItem(c.Request.Context(), sessionID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondCart(c, "Item added to cart successfully", contents)
}

// UpdateCartItem handles PUT /cart/items
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contents, err := h.cartService.UpdateItem(c.Request.Context(), sessionID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondCart(c, "Cart item updated successfully", contents)
}

// RemoveFromCart handles DELETE /cart/items
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	var req cart.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contents, err := h.cartService.RemoveItem(c.Request.Context(), sessionID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondCart(c, "Item removed from cart successfully", contents)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	if err := h.cartService.ClearCart(c.Request.Context(), sessionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// DebugCart handles GET /cart/debug, registered in development only
func (h *CartHandler) DebugCart(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	diagnostics, err := h.cartService.Diagnose(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart diagnostics",
		"data":    diagnostics,
	})
}

func (h *CartHandler) respondCart(c *gin.Context, message string, contents *cart.Contents) {
	summary, err := checkout.Calculate(contents.Items, h.pricing)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data": CartResponse{
			Contents: contents,
			Summary:  summary,
		},
	})
}
