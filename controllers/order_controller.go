package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"
)

// OrderController exposes order lifecycle endpoints.
type OrderController struct {
	orders services.OrderService
	logger *zap.Logger
}

// NewOrderController creates an OrderController.
func NewOrderController(orders services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

// CreateOrder handles POST /api/orders. Works for guests; an authenticated
// caller has the order attached to their account.
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, svcErr := ctl.orders.CreateOrder(c.Request.Context(), &req, middleware.UserIDFromContext(c))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// ListOrders handles GET /api/orders. Authenticated callers see their own
// orders; guests supply ?email=; admins may pass ?all=true.
func (ctl *OrderController) ListOrders(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	email := c.Query("email")
	if userID != nil {
		email = middleware.UserEmailFromContext(c)
	}
	all := c.Query("all") == "true" && middleware.IsAdmin(c)

	orders, svcErr := ctl.orders.ListOrders(c.Request.Context(), userID, email, all)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrder handles GET /api/orders/:ref. The ref may be the external order
// identifier or the internal id. Non-owners get a 404, never a 403.
func (ctl *OrderController) GetOrder(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	email := c.Query("email")
	if userID != nil {
		email = middleware.UserEmailFromContext(c)
	}
	if middleware.IsAdmin(c) {
		userID = nil
		email = ""
	}

	order, svcErr := ctl.orders.GetOrder(c.Request.Context(), c.Param("ref"), userID, email)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateStatus handles PUT /api/orders/:ref/status. Admin only.
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, svcErr := ctl.orders.UpdateStatus(c.Request.Context(), c.Param("ref"), req.Status, req.Notes)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdatePaymentDetails handles PUT /api/orders/:ref/payment. Admin only.
func (ctl *OrderController) UpdatePaymentDetails(c *gin.Context) {
	var req models.UpdatePaymentDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	order, svcErr := ctl.orders.UpdatePaymentDetails(c.Request.Context(), c.Param("ref"), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
