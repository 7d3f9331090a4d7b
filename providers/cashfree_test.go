package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCashfree(t *testing.T, handler http.HandlerFunc) *CashfreeProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewCashfreeProvider("app-id", "secret", "sandbox", "https://shop.example/return", "https://shop.example/webhook")
	p.baseURL = server.URL
	return p
}

func TestCashfreeCreateSession(t *testing.T) {
	var captured cashfreeOrderRequest
	provider := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "app-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, cashfreeAPIVersion, r.Header.Get("x-api-version"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id":           captured.OrderID,
			"payment_session_id": "session_abc123",
		})
	})

	session, err := provider.CreateSession(context.Background(), &SessionRequest{
		OrderID:       "ORD-1756710000000-ABCDEF123",
		Amount:        300,
		CustomerID:    "guest",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "9876543210",
	})
	require.NoError(t, err)

	assert.Equal(t, "session_abc123", session.SessionID)
	assert.Equal(t, "ORD-1756710000000-ABCDEF123", session.GatewayOrderID)
	assert.Equal(t, "INR", captured.OrderCurrency)
	assert.Equal(t, "+919876543210", captured.CustomerDetails.CustomerPhone)
	assert.Equal(t, "asha", captured.CustomerDetails.CustomerName)
	assert.Equal(t, "https://shop.example/return", captured.OrderMeta.ReturnURL)
	assert.Equal(t, "https://shop.example/webhook", captured.OrderMeta.NotifyURL)
}

func TestCashfreeCreateSessionMissingSessionID(t *testing.T) {
	provider := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"order_id": "ORD-1"})
	})

	_, err := provider.CreateSession(context.Background(), &SessionRequest{
		OrderID: "ORD-1", Amount: 100, CustomerEmail: "a@b.com", CustomerPhone: "9876543210",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_session_id")
}

func TestCashfreeCreateSessionWithoutCredentials(t *testing.T) {
	provider := NewCashfreeProvider("", "", "sandbox", "", "")
	_, err := provider.CreateSession(context.Background(), &SessionRequest{OrderID: "ORD-1", Amount: 100})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCashfreeQueryStatus(t *testing.T) {
	provider := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/ORD-77", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id":       "ORD-77",
			"payment_status": "SUCCESS",
			"payment_id":     "cf-pay-9",
		})
	})

	result, err := provider.QueryStatus(context.Background(), "ORD-77")
	require.NoError(t, err)
	assert.Equal(t, PaymentOutcomeSuccess, result.Outcome)
	assert.Equal(t, "cf-pay-9", result.GatewayPaymentID)
	assert.Equal(t, "SUCCESS", result.RawStatus)
}

func TestCashfreeQueryStatusUpstreamError(t *testing.T) {
	provider := newTestCashfree(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"order not found"}`, http.StatusNotFound)
	})

	_, err := provider.QueryStatus(context.Background(), "ORD-MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestCashfreeParseWebhook(t *testing.T) {
	provider := NewCashfreeProvider("a", "b", "sandbox", "", "")

	payload := []byte(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": {
			"order":   {"order_id": "ORD-55"},
			"payment": {"cf_payment_id": 12345, "payment_status": "SUCCESS"}
		}
	}`)
	result, err := provider.ParseWebhook(payload)
	require.NoError(t, err)
	assert.Equal(t, "ORD-55", result.GatewayOrderID)
	assert.Equal(t, "12345", result.GatewayPaymentID)
	assert.Equal(t, PaymentOutcomeSuccess, result.Outcome)

	_, err = provider.ParseWebhook([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = provider.ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}

func TestMapCashfreeStatus(t *testing.T) {
	assert.Equal(t, PaymentOutcomeSuccess, mapCashfreeStatus("SUCCESS"))
	assert.Equal(t, PaymentOutcomeFailed, mapCashfreeStatus("FAILED"))
	assert.Equal(t, PaymentOutcomePending, mapCashfreeStatus("USER_DROPPED"))
	assert.Equal(t, PaymentOutcomePending, mapCashfreeStatus(""))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+919876543210", normalizePhone("9876543210"))
	assert.Equal(t, "+919876543210", normalizePhone("919876543210"))
	assert.Equal(t, "+14155550123", normalizePhone("+14155550123"))
}
