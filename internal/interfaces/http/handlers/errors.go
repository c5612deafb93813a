// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// respondError maps domain errors to status codes. Anything unrecognised comes from
// Redis or the database and is reported as a retryable 503.
func respondError(c *gin.Context, logger *logrus.Entry, err error) {
	var validationErr *checkout.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": validationErr.Fields,
		})

	case errors.Is(err, cart.ErrInvalidSize):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"details": gin.H{"size": err.Error()},
		})
	case errors.Is(err, cart.ErrInvalidColor):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"details": gin.H{"color": err.Error()},
		})
	case errors.Is(err, order.ErrInvalidStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"details": gin.H{"status": err.Error()},
		})

	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrNoConfirmation):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrShippingIncomplete),
		errors.Is(err, checkout.ErrOrderInProgress),
		errors.Is(err, order.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, checkout.ErrPaymentDeclined),
		errors.Is(err, checkout.ErrPaymentUnavailable):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})

	case errors.Is(err, cart.ErrSessionRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.FullPath(),
		}).Error("request failed")
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable, please retry",
		})
	}
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
