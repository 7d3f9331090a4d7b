package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-backend/models"
	"storefront-backend/providers"
	"storefront-backend/services"
)

type stubPaymentProvider struct {
	parseFn func(payload []byte) (*providers.PaymentResult, error)
	queryFn func(ctx context.Context, id string) (*providers.PaymentResult, error)
}

func (s *stubPaymentProvider) CreateSession(ctx context.Context, req *providers.SessionRequest) (*providers.PaymentSession, error) {
	return &providers.PaymentSession{SessionID: "session_1", GatewayOrderID: req.OrderID}, nil
}

func (s *stubPaymentProvider) QueryStatus(ctx context.Context, gatewayOrderID string) (*providers.PaymentResult, error) {
	if s.queryFn != nil {
		return s.queryFn(ctx, gatewayOrderID)
	}
	return nil, errors.New("not stubbed")
}

func (s *stubPaymentProvider) ParseWebhook(payload []byte) (*providers.PaymentResult, error) {
	if s.parseFn != nil {
		return s.parseFn(payload)
	}
	return nil, errors.New("not stubbed")
}

// stubOrderService embeds the interface; only the overridden methods are
// expected to be called.
type stubOrderService struct {
	services.OrderService
	applied chan *providers.PaymentResult
}

func (s *stubOrderService) ApplyPaymentResult(ctx context.Context, result *providers.PaymentResult) (*models.Order, *services.ServiceError) {
	if s.applied != nil {
		s.applied <- result
	}
	return &models.Order{
		OrderID:        result.GatewayOrderID,
		Status:         models.OrderStatusConfirmed,
		PaymentDetails: models.PaymentDetails{PaymentStatus: models.PaymentStatusCompleted},
	}, nil
}

func newWebhookRouter(provider providers.PaymentProvider, orders services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctl := NewPaymentController(provider, orders, zap.NewNop())
	r := gin.New()
	r.POST("/api/payments/webhook", ctl.Webhook)
	r.POST("/api/payments/verify", ctl.VerifyPayment)
	return r
}

func TestPaymentWebhookRejectsMalformedPayload(t *testing.T) {
	provider := &stubPaymentProvider{
		parseFn: func(payload []byte) (*providers.PaymentResult, error) {
			return nil, errors.New("order_id missing")
		},
	}
	r := newWebhookRouter(provider, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewBufferString(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentWebhookAcknowledgesThenProcesses(t *testing.T) {
	result := &providers.PaymentResult{
		GatewayOrderID: "ORD-1",
		Outcome:        providers.PaymentOutcomeSuccess,
	}
	provider := &stubPaymentProvider{
		parseFn: func(payload []byte) (*providers.PaymentResult, error) { return result, nil },
	}
	orders := &stubOrderService{applied: make(chan *providers.PaymentResult, 1)}
	r := newWebhookRouter(provider, orders)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewBufferString(`{"data":{}}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case got := <-orders.applied:
		assert.Equal(t, "ORD-1", got.GatewayOrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was acknowledged but never processed")
	}
}

func TestVerifyPaymentFoldsGatewayResult(t *testing.T) {
	provider := &stubPaymentProvider{
		queryFn: func(ctx context.Context, id string) (*providers.PaymentResult, error) {
			return &providers.PaymentResult{
				GatewayOrderID: id,
				RawStatus:      "SUCCESS",
				Outcome:        providers.PaymentOutcomeSuccess,
			}, nil
		},
	}
	r := newWebhookRouter(provider, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", bytes.NewBufferString(`{"orderId":"ORD-9"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentStatus":"completed"`)
}

func TestVerifyPaymentRequiresOrderID(t *testing.T) {
	r := newWebhookRouter(&stubPaymentProvider{}, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
