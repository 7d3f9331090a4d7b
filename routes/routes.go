package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/controllers"
	"storefront-backend/middleware"
	"storefront-backend/services"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
	Products *controllers.ProductController
	Shipway  *controllers.ShipwayController
}

// Setup mounts all routes on the engine. Webhooks are unauthenticated by
// contract with the upstreams; administrative routes require an admin token.
func Setup(r *gin.Engine, ctl Controllers, auth services.AuthService, limiter *middleware.RateLimiter) {
	r.Use(limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", ctl.Auth.Register)
		authGroup.POST("/login", ctl.Auth.Login)
		authGroup.GET("/profile", middleware.Authenticate(auth), ctl.Auth.GetProfile)
		authGroup.PATCH("/profile", middleware.Authenticate(auth), ctl.Auth.UpdateProfile)
	}

	orders := api.Group("/orders", middleware.OptionalAuthenticate(auth))
	{
		orders.POST("", ctl.Orders.CreateOrder)
		orders.GET("", ctl.Orders.ListOrders)
		orders.GET("/:ref", ctl.Orders.GetOrder)
		orders.PUT("/:ref/status", middleware.Authenticate(auth), middleware.RequireAdmin(), ctl.Orders.UpdateStatus)
		orders.PUT("/:ref/payment", middleware.Authenticate(auth), middleware.RequireAdmin(), ctl.Orders.UpdatePaymentDetails)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/session", middleware.OptionalAuthenticate(auth), ctl.Payments.CreateSession)
		payments.POST("/verify", ctl.Payments.VerifyPayment)
		payments.POST("/webhook", ctl.Payments.Webhook)
	}

	shipway := api.Group("/shipway")
	{
		shipway.POST("/webhook", ctl.Shipway.Webhook)
		shipway.GET("/couriers", ctl.Shipway.ListCouriers)
		shipway.GET("/orders/:ref/track", middleware.OptionalAuthenticate(auth), ctl.Shipway.TrackOrder)

		admin := shipway.Group("/orders/:ref", middleware.Authenticate(auth), middleware.RequireAdmin())
		{
			admin.POST("/shipment", ctl.Shipway.CreateShipment)
			admin.POST("/cancel", ctl.Shipway.CancelShipment)
			admin.GET("/label", ctl.Shipway.GetLabel)
		}
	}

	products := api.Group("/products")
	{
		products.GET("", ctl.Products.ListProducts)
		products.GET("/:id", ctl.Products.GetProduct)

		admin := products.Group("", middleware.Authenticate(auth), middleware.RequireAdmin())
		{
			admin.POST("", ctl.Products.CreateProduct)
			admin.PATCH("/:id", ctl.Products.UpdateProduct)
			admin.PATCH("/:id/stock", ctl.Products.UpdateStock)
			admin.DELETE("/:id", ctl.Products.DeleteProduct)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}
