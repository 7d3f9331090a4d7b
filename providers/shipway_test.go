package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/models"
)

func newTestShipway(t *testing.T, handler http.HandlerFunc) *ShipwayProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewShipwayProvider(ShipwayConfig{
		BaseURL:    server.URL,
		Username:   "merchant",
		Password:   "hunter2",
		LicenseKey: "lic-123",
	})
}

func sampleOrder() *models.Order {
	return &models.Order{
		OrderID:       "ORD-1756710000000-ABCDEF123",
		PaymentMethod: models.PaymentMethodCOD,
		Total:         300,
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Mug", Price: 100, Quantity: 2},
			{ProductID: "p2", Name: "Coaster", Price: 50, Quantity: 1},
		},
		ShippingInfo: models.ShippingInfo{
			FullName: "Asha Rao",
			Email:    "asha@example.com",
			Phone:    "9876543210",
			Address:  "12 MG Road",
			City:     "Bengaluru",
			State:    "Karnataka",
			Pincode:  "560001",
		},
	}
}

func TestShipwayCreateShipment(t *testing.T) {
	var captured shipwayCreateOrderRequest
	provider := newTestShipway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/CreateOrder", r.URL.Path)
		assert.Equal(t, "Basic bWVyY2hhbnQ6aHVudGVyMg==", r.Header.Get("Authorization"))
		assert.Equal(t, "lic-123", r.Header.Get("License-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"OrderId":        "SHP-42",
			"TrackingNumber": "TRK-42",
			"AWB":            "AWB-42",
			"CourierName":    "Delhivery",
		})
	})

	shipment, err := provider.CreateShipment(context.Background(), sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "SHP-42", shipment.ShipmentID)
	assert.Equal(t, "TRK-42", shipment.TrackingNumber)
	assert.Equal(t, "AWB-42", shipment.AWBNumber)
	assert.Equal(t, "Delhivery", shipment.CourierName)
	assert.Equal(t, models.ShipmentStatusCreated, shipment.Status)

	assert.Equal(t, "ORD-1756710000000-ABCDEF123", captured.OrderNumber)
	assert.Equal(t, "COD", captured.PaymentMode)
	assert.Equal(t, 300.0, captured.CODAmount)
	assert.Equal(t, "Mug (Qty: 2), Coaster (Qty: 1)", captured.ProductName)
	assert.Equal(t, 3, captured.ProductQuantity)
	assert.Equal(t, "0.5", captured.Weight)
}

func TestShipwayCreateShipmentPrepaid(t *testing.T) {
	var captured shipwayCreateOrderRequest
	provider := newTestShipway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{"OrderId": "SHP-1"})
	})

	order := sampleOrder()
	order.PaymentMethod = models.PaymentMethodOnline
	_, err := provider.CreateShipment(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, "Prepaid", captured.PaymentMode)
	assert.Equal(t, 0.0, captured.CODAmount)
}

func TestShipwayWithoutCredentials(t *testing.T) {
	provider := NewShipwayProvider(ShipwayConfig{BaseURL: "http://localhost"})
	_, err := provider.CreateShipment(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestShipwayTrack(t *testing.T) {
	provider := newTestShipway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/TrackOrder", r.URL.Path)
		assert.Equal(t, "TRK-42", r.URL.Query().Get("TrackingNumber"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"TrackingNumber":        "TRK-42",
			"Status":                "In Transit",
			"Location":              "Nagpur Hub",
			"EstimatedDeliveryDate": "2026-09-05",
		})
	})

	tracking, err := provider.Track(context.Background(), "TRK-42")
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentStatusInTransit, tracking.Status)
	assert.Equal(t, "Nagpur Hub", tracking.Location)
	require.NotNil(t, tracking.EstimatedDeliveryDate)
	assert.Equal(t, "2026-09-05", tracking.EstimatedDeliveryDate.Format("2006-01-02"))
}

func TestShipwayCancelAndLabel(t *testing.T) {
	provider := newTestShipway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/CancelOrder":
			json.NewEncoder(w).Encode(map[string]interface{}{"Status": "Success"})
		case "/GetLabel":
			assert.Equal(t, "SHP-42", r.URL.Query().Get("OrderId"))
			json.NewEncoder(w).Encode(map[string]interface{}{"LabelURL": "https://labels.example/42.pdf"})
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, provider.Cancel(context.Background(), "SHP-42"))

	label, err := provider.GetLabel(context.Background(), "SHP-42")
	require.NoError(t, err)
	assert.Equal(t, "https://labels.example/42.pdf", label.LabelURL)
	assert.Equal(t, "PDF", label.Format)
}

func TestShipwayListServiceableCouriers(t *testing.T) {
	provider := newTestShipway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "560001", r.URL.Query().Get("Pincode"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Couriers": []map[string]interface{}{
				{"CourierId": "1", "CourierName": "Delhivery"},
				{"CourierId": "7", "CourierName": "Bluedart"},
			},
		})
	})

	couriers, err := provider.ListServiceableCouriers(context.Background(), "560001")
	require.NoError(t, err)
	require.Len(t, couriers, 2)
	assert.Equal(t, "Delhivery", couriers[0].Name)
	assert.Equal(t, "7", couriers[1].ID)
}

func TestShipwayUpstreamError(t *testing.T) {
	provider := newTestShipway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := provider.Track(context.Background(), "TRK-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestShipwayParseWebhook(t *testing.T) {
	provider := NewShipwayProvider(ShipwayConfig{})

	event, err := provider.ParseWebhook([]byte(`{
		"OrderNumber":    "ORD-9",
		"TrackingNumber": "TRK-9",
		"Status":         "Out for Delivery"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", event.OrderRef)
	assert.Equal(t, "Out for Delivery", event.CarrierStatus)
	assert.Equal(t, models.ShipmentStatusOutForDelivery, event.Status)

	event, err = provider.ParseWebhook([]byte(`{"TrackingNumber": "TRK-9", "Status": "Delivered", "DeliveredDate": "2026-09-01 14:02:00"}`))
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentStatusDelivered, event.Status)
	require.NotNil(t, event.DeliveredDate)

	_, err = provider.ParseWebhook([]byte(`{"Status": "Delivered"}`))
	assert.Error(t, err)

	_, err = provider.ParseWebhook([]byte(`no`))
	assert.Error(t, err)
}

func TestMapCarrierStatus(t *testing.T) {
	cases := map[string]string{
		"Picked":           models.ShipmentStatusPicked,
		"In Transit":       models.ShipmentStatusInTransit,
		"Out for Delivery": models.ShipmentStatusOutForDelivery,
		"Delivered":        models.ShipmentStatusDelivered,
		"Failed":           models.ShipmentStatusFailed,
		"Cancelled":        models.ShipmentStatusCancelled,
		"RTO Initiated":    "rto initiated",
	}
	for raw, want := range cases {
		assert.Equal(t, want, MapCarrierStatus(raw), raw)
	}
}
