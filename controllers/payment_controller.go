package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/providers"
	"storefront-backend/services"
)

// webhookTimeout bounds background processing of an acknowledged webhook.
const webhookTimeout = 30 * time.Second

// PaymentController exposes Cashfree session, verify and webhook endpoints.
type PaymentController struct {
	payments providers.PaymentProvider
	orders   services.OrderService
	logger   *zap.Logger
}

// NewPaymentController creates a PaymentController.
func NewPaymentController(payments providers.PaymentProvider, orders services.OrderService, logger *zap.Logger) *PaymentController {
	return &PaymentController{payments: payments, orders: orders, logger: logger}
}

type createSessionRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type verifyPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreateSession handles POST /api/payments/session. It opens a hosted
// payment session for an existing order and records the gateway correlation
// ids before responding, so a webhook arriving immediately after can resolve
// the order.
func (ctl *PaymentController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := middleware.UserIDFromContext(c)
	email := c.Query("email")
	if userID != nil {
		email = middleware.UserEmailFromContext(c)
	}
	order, svcErr := ctl.orders.GetOrder(c.Request.Context(), req.OrderID, userID, email)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	if order.PaymentMethod != models.PaymentMethodOnline {
		respondError(c, services.NewValidationError("payment sessions are only for online orders"))
		return
	}
	if order.PaymentDetails.PaymentStatus == models.PaymentStatusCompleted {
		respondError(c, services.NewConflictError("payment is already completed for this order"))
		return
	}

	customerID := "guest"
	if order.UserID != nil {
		customerID = order.UserID.Hex()
	}
	session, err := ctl.payments.CreateSession(c.Request.Context(), &providers.SessionRequest{
		OrderID:       order.OrderID,
		Amount:        order.Total,
		CustomerID:    customerID,
		CustomerName:  order.ShippingInfo.FullName,
		CustomerEmail: order.ShippingInfo.Email,
		CustomerPhone: order.ShippingInfo.Phone,
	})
	if err != nil {
		ctl.logger.Error("Payment session creation failed", zap.String("order_id", order.OrderID), zap.Error(err))
		respondError(c, services.NewUpstreamError("failed to create payment session", err))
		return
	}

	if svcErr := ctl.orders.RecordPaymentSession(c.Request.Context(), order.OrderID, session.GatewayOrderID, session.SessionID); svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentSessionId": session.SessionID,
		"orderId":          session.GatewayOrderID,
	})
}

// VerifyPayment handles POST /api/payments/verify. The gateway is polled and
// the result folded into the order; calling it repeatedly is safe.
func (ctl *PaymentController) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctl.payments.QueryStatus(c.Request.Context(), req.OrderID)
	if err != nil {
		ctl.logger.Error("Payment verification failed", zap.String("order_id", req.OrderID), zap.Error(err))
		respondError(c, services.NewUpstreamError("failed to verify payment", err))
		return
	}

	order, svcErr := ctl.orders.ApplyPaymentResult(c.Request.Context(), result)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":         order,
		"paymentStatus": order.PaymentDetails.PaymentStatus,
		"outcome":       result.Outcome,
	})
}

// Webhook handles POST /api/payments/webhook. Structurally invalid payloads
// get a 400 so the gateway stops resending garbage; everything else is
// acknowledged with 200 before processing, since the fold is idempotent and
// the gateway retries on our behalf if processing dies mid-flight.
func (ctl *PaymentController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	result, err := ctl.payments.ParseWebhook(payload)
	if err != nil {
		ctl.logger.Warn("Rejected malformed payment webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if _, svcErr := ctl.orders.ApplyPaymentResult(ctx, result); svcErr != nil {
			ctl.logger.Error("Payment webhook processing failed",
				zap.String("gateway_order_id", result.GatewayOrderID),
				zap.Error(svcErr),
			)
		}
	}()
}
