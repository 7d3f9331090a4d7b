package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/middleware"
	"storefront-backend/providers"
	"storefront-backend/services"
)

// ShipwayController exposes shipment endpoints and the carrier webhook.
type ShipwayController struct {
	shipping providers.ShippingProvider
	orders   services.OrderService
	logger   *zap.Logger
}

// NewShipwayController creates a ShipwayController.
func NewShipwayController(shipping providers.ShippingProvider, orders services.OrderService, logger *zap.Logger) *ShipwayController {
	return &ShipwayController{shipping: shipping, orders: orders, logger: logger}
}

// CreateShipment handles POST /api/shipway/orders/:ref/shipment. Admin only.
func (ctl *ShipwayController) CreateShipment(c *gin.Context) {
	order, shipment, svcErr := ctl.orders.CreateShipment(c.Request.Context(), c.Param("ref"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "shipment": shipment})
}

// TrackOrder handles GET /api/shipway/orders/:ref/track. The live carrier
// status is folded into the order before responding.
func (ctl *ShipwayController) TrackOrder(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	email := c.Query("email")
	if userID != nil {
		email = middleware.UserEmailFromContext(c)
	}
	if middleware.IsAdmin(c) {
		userID = nil
		email = ""
	}

	order, tracking, svcErr := ctl.orders.TrackOrder(c.Request.Context(), c.Param("ref"), userID, email)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "tracking": tracking})
}

// CancelShipment handles POST /api/shipway/orders/:ref/cancel. Admin only.
func (ctl *ShipwayController) CancelShipment(c *gin.Context) {
	order, svcErr := ctl.orders.CancelShipment(c.Request.Context(), c.Param("ref"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetLabel handles GET /api/shipway/orders/:ref/label. Admin only.
func (ctl *ShipwayController) GetLabel(c *gin.Context) {
	label, svcErr := ctl.orders.GetLabel(c.Request.Context(), c.Param("ref"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"label": label})
}

// ListCouriers handles GET /api/shipway/couriers?pincode=.
func (ctl *ShipwayController) ListCouriers(c *gin.Context) {
	pincode := c.Query("pincode")
	if pincode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pincode is required"})
		return
	}
	couriers, svcErr := ctl.orders.ListCouriers(c.Request.Context(), pincode)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"couriers": couriers})
}

// Webhook handles POST /api/shipway/webhook. Same acknowledge-then-process
// contract as the payment webhook: a 400 only for payloads the parser cannot
// anchor to an order, a 200 before the fold runs for everything else.
func (ctl *ShipwayController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := ctl.shipping.ParseWebhook(payload)
	if err != nil {
		ctl.logger.Warn("Rejected malformed shipping webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if _, svcErr := ctl.orders.ApplyShippingUpdate(ctx, event); svcErr != nil {
			ctl.logger.Error("Shipping webhook processing failed",
				zap.String("order_ref", event.OrderRef),
				zap.String("tracking_number", event.TrackingNumber),
				zap.Error(svcErr),
			)
		}
	}()
}
