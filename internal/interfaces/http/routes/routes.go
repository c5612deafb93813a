// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

// Dependencies are the services the API is built on
type Dependencies struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Verifier *auth.TokenVerifier
	Catalog  *product.Catalog
	Carts    *cart.Service
	Checkout *checkout.Service
	Orders   *order.Service
	Receipts handlers.ReceiptRenderer
	Pricing  checkout.Pricing
	Payments *checkout.BreakerGateway
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	sessions := handlers.NewSessionCookie(deps.Config.Checkout.CartTTL, deps.Config.Security.SecureCookies)

	SetupProductRoutes(rg, deps)
	SetupCartRoutes(rg, deps, sessions)
	SetupCheckoutRoutes(rg, deps, sessions)
	SetupOrderRoutes(rg, deps, sessions)
	SetupAdminRoutes(rg, deps, sessions)
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Catalog, logger.Component(deps.Logger, "product"))

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/category/:category", productHandler.GetProductsByCategory)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart routes; carts belong to the session cookie
func SetupCartRoutes(rg *gin.RouterGroup, deps *Dependencies, sessions *handlers.SessionCookie) {
	cartHandler := handlers.NewCartHandler(deps.Carts, deps.Pricing, sessions, logger.Component(deps.Logger, "cart"))

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items", cartHandler.UpdateCartItem)
		cart.DELETE("/items", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)

		if deps.Config.IsDevelopment() {
			cart.GET("/debug", cartHandler.DebugCart)
		}
	}
}

// SetupCheckoutRoutes sets up checkout routes. Guests may check out; a valid token
// links the order to the user's history.
func SetupCheckoutRoutes(rg *gin.RouterGroup, deps *Dependencies, sessions *handlers.SessionCookie) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout, sessions, logger.Component(deps.Logger, "checkout"))

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(deps.Verifier))
	{
		checkout.GET("", checkoutHandler.GetCheckout)
		checkout.POST("/advance", checkoutHandler.Advance)
		checkout.POST("/retreat", checkoutHandler.Retreat)
		checkout.POST("/shipping", checkoutHandler.SubmitShipping)
		checkout.POST("/payment", checkoutHandler.SubmitPayment)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, deps *Dependencies, sessions *handlers.SessionCookie) {
	orderLogger := logger.Component(deps.Logger, "order")
	orderHandler := handlers.NewOrderHandler(deps.Orders, sessions, orderLogger)
	receiptHandler := handlers.NewReceiptHandler(deps.Orders, deps.Receipts, orderLogger)

	orders := rg.Group("/orders")
	{
		// Public endpoints
		orders.GET("/confirmation", orderHandler.GetConfirmation)
		orders.GET("/track/:number", orderHandler.TrackOrder)

		// Protected endpoints
		protected := orders.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Verifier))
		{
			protected.GET("", orderHandler.GetOrders)
			protected.GET("/:number", orderHandler.GetOrder)
			protected.GET("/:number/receipt", receiptHandler.DownloadReceipt)
		}
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, deps *Dependencies, sessions *handlers.SessionCookie) {
	orderHandler := handlers.NewOrderHandler(deps.Orders, sessions, logger.Component(deps.Logger, "admin"))

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.Verifier)) // Require authentication
	admin.Use(middleware.AdminMiddleware())             // Require admin privileges
	{
		orders := admin.Group("/orders")
		{
			orders.PUT("/:number/status", orderHandler.AdminUpdateOrderStatus)
		}
	}
}
