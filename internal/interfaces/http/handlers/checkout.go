// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the three step checkout
type CheckoutHandler struct {
	checkoutService *checkout.Service
	sessions        *SessionCookie
	logger          *logrus.Entry
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, sessions *SessionCookie, logger *logrus.Entry) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		sessions:        sessions,
		logger:          logger,
	}
}

// GetCheckout handles GET /checkout?step=N
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)
	step := checkout.ParseStep(c.Query("step"))

	state, err := h.checkoutService.GetState(c.Request.Context(), sessionID, step)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout state retrieved successfully",
		"data":    state,
	})
}

// Advance handles POST /checkout/advance?step=N
func (h *CheckoutHandler) Advance(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)
	step := checkout.ParseStep(c.Query("step"))

	result, err := h.checkoutService.Advance(c.Request.Context(), sessionID, step)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondNavigation(c, result)
}

// Retreat handles POST /checkout/retreat?step=N
func (h *CheckoutHandler) Retreat(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)
	step := checkout.ParseStep(c.Query("step"))

	result, err := h.checkoutService.Retreat(c.Request.Context(), sessionID, step)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondNavigation(c, result)
}

// SubmitShipping handles POST /checkout/shipping
func (h *CheckoutHandler) SubmitShipping(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)

	var form checkout.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.checkoutService.SubmitShipping(c.Request.Context(), sessionID, &form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondNavigation(c, result)
}

// SubmitPayment handles POST /checkout/payment
func (h *CheckoutHandler) SubmitPayment(c *gin.Context) {
	sessionID := h.sessions.GetOrCreate(c)
	userID, _ := middleware.GetUserIDFromContext(c)

	var form checkout.PaymentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), sessionID, userID, &form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"order_number": result.Order.OrderNumber,
		"user_id":      userID,
		"request_id":   middleware.GetRequestID(c),
	}).Info("checkout completed")

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully",
		"data":     result.Order,
		"redirect": result.Redirect,
	})
}

// A blocked transition is still a 200: the client stays on the returned step
func (h *CheckoutHandler) respondNavigation(c *gin.Context, result *checkout.NavigationResult) {
	message := "Step changed"
	if !result.Transition.Allowed {
		message = "Step change blocked"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"transition": result.Transition,
		"data":       result.State,
	})
}
