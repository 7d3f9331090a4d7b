package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"storefront-backend/models"
	"storefront-backend/providers"
	"storefront-backend/services"
)

type shippingEventRecorder struct {
	services.OrderService
	applied chan *providers.ShippingEvent
}

func (s *shippingEventRecorder) ApplyShippingUpdate(ctx context.Context, event *providers.ShippingEvent) (*models.Order, *services.ServiceError) {
	s.applied <- event
	return &models.Order{OrderID: event.OrderRef, Status: models.OrderStatusShipped}, nil
}

func newShipwayWebhookRouter(orders services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	provider := providers.NewShipwayProvider(providers.ShipwayConfig{})
	ctl := NewShipwayController(provider, orders, zap.NewNop())
	r := gin.New()
	r.POST("/api/shipway/webhook", ctl.Webhook)
	return r
}

func TestShipwayWebhookRejectsUnanchoredPayload(t *testing.T) {
	r := newShipwayWebhookRouter(&shippingEventRecorder{applied: make(chan *providers.ShippingEvent, 1)})

	// Neither an order number nor a tracking number.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shipway/webhook", bytes.NewBufferString(`{"Status":"Delivered"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShipwayWebhookAcknowledgesThenProcesses(t *testing.T) {
	orders := &shippingEventRecorder{applied: make(chan *providers.ShippingEvent, 1)}
	r := newShipwayWebhookRouter(orders)

	w := httptest.NewRecorder()
	body := `{"OrderNumber":"ORD-3","Status":"Out for Delivery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/shipway/webhook", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case event := <-orders.applied:
		assert.Equal(t, "ORD-3", event.OrderRef)
		assert.Equal(t, models.ShipmentStatusOutForDelivery, event.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was acknowledged but never processed")
	}
}
