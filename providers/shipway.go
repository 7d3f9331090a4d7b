package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-backend/models"
)

// carrierStatusMap translates Shipway's status vocabulary onto the closed
// shipment status set. Unrecognized statuses are lower-cased and passed
// through so carrier vocabulary drift never drops an event.
var carrierStatusMap = map[string]string{
	"Picked":           models.ShipmentStatusPicked,
	"In Transit":       models.ShipmentStatusInTransit,
	"Out for Delivery": models.ShipmentStatusOutForDelivery,
	"Delivered":        models.ShipmentStatusDelivered,
	"Failed":           models.ShipmentStatusFailed,
	"Cancelled":        models.ShipmentStatusCancelled,
}

// MapCarrierStatus maps a raw Shipway status string to the internal set.
func MapCarrierStatus(raw string) string {
	if mapped, ok := carrierStatusMap[raw]; ok {
		return mapped
	}
	return strings.ToLower(raw)
}

// ShipwayConfig holds Shipway credentials and default parcel dimensions.
type ShipwayConfig struct {
	BaseURL    string
	Username   string
	Password   string
	LicenseKey string
	// Default parcel attributes; weight in kg, dimensions in cm.
	DefaultWeight  string
	DefaultLength  string
	DefaultBreadth string
	DefaultHeight  string
}

// ShipwayProvider implements ShippingProvider using the Shipway API.
type ShipwayProvider struct {
	cfg        ShipwayConfig
	httpClient *http.Client
}

// NewShipwayProvider creates a ShipwayProvider.
func NewShipwayProvider(cfg ShipwayConfig) *ShipwayProvider {
	if cfg.DefaultWeight == "" {
		cfg.DefaultWeight = "0.5"
	}
	if cfg.DefaultLength == "" {
		cfg.DefaultLength = "10"
	}
	if cfg.DefaultBreadth == "" {
		cfg.DefaultBreadth = "10"
	}
	if cfg.DefaultHeight == "" {
		cfg.DefaultHeight = "10"
	}
	return &ShipwayProvider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- Shipway API request structs ----

type shipwayCreateOrderRequest struct {
	OrderNumber     string `json:"OrderNumber"`
	CustomerName    string `json:"CustomerName"`
	CustomerEmail   string `json:"CustomerEmail"`
	CustomerPhone   string `json:"CustomerPhone"`
	CustomerAddress string `json:"CustomerAddress"`
	CustomerCity    string `json:"CustomerCity"`
	CustomerState   string `json:"CustomerState"`
	CustomerPincode string `json:"CustomerPincode"`
	ProductName     string `json:"ProductName"`
	ProductQuantity int    `json:"ProductQuantity"`
	ProductPrice    float64 `json:"ProductPrice"`
	PaymentMode     string `json:"PaymentMode"`
	CODAmount       float64 `json:"CODAmount"`
	OrderDate       string `json:"OrderDate"`
	Weight          string `json:"Weight"`
	Length          string `json:"Length"`
	Breadth         string `json:"Breadth"`
	Height          string `json:"Height"`
}

// ---- ShippingProvider implementation ----

// CreateShipment registers the order with Shipway and returns the shipment
// correlation identifiers.
func (s *ShipwayProvider) CreateShipment(ctx context.Context, order *models.Order) (*ShipmentRef, error) {
	paymentMode := "Prepaid"
	codAmount := 0.0
	if order.PaymentMethod == models.PaymentMethodCOD {
		paymentMode = "COD"
		codAmount = order.Total
	}

	names := make([]string, 0, len(order.Items))
	quantity := 0
	for _, item := range order.Items {
		names = append(names, fmt.Sprintf("%s (Qty: %d)", item.Name, item.Quantity))
		quantity += item.Quantity
	}

	body := shipwayCreateOrderRequest{
		OrderNumber:     order.OrderID,
		CustomerName:    order.ShippingInfo.FullName,
		CustomerEmail:   order.ShippingInfo.Email,
		CustomerPhone:   order.ShippingInfo.Phone,
		CustomerAddress: order.ShippingInfo.Address,
		CustomerCity:    order.ShippingInfo.City,
		CustomerState:   order.ShippingInfo.State,
		CustomerPincode: order.ShippingInfo.Pincode,
		ProductName:     strings.Join(names, ", "),
		ProductQuantity: quantity,
		ProductPrice:    order.Total,
		PaymentMode:     paymentMode,
		CODAmount:       codAmount,
		OrderDate:       time.Now().UTC().Format(time.RFC3339),
		Weight:          s.cfg.DefaultWeight,
		Length:          s.cfg.DefaultLength,
		Breadth:         s.cfg.DefaultBreadth,
		Height:          s.cfg.DefaultHeight,
	}

	raw, err := s.doRequest(ctx, http.MethodPost, "/CreateOrder", body)
	if err != nil {
		return nil, fmt.Errorf("shipway CreateShipment: %w", err)
	}

	status := firstString(raw, "Status")
	if status == "" {
		status = models.ShipmentStatusCreated
	} else {
		status = MapCarrierStatus(status)
	}

	trackingNumber := firstString(raw, "TrackingNumber", "AWB", "tracking_number")
	return &ShipmentRef{
		ShipmentID:            firstString(raw, "OrderId", "ShipmentId", "id"),
		TrackingNumber:        trackingNumber,
		AWBNumber:             firstString(raw, "AWB", "awb_number", "TrackingNumber"),
		CourierName:           firstString(raw, "CourierName", "courier_name"),
		CourierTrackingURL:    firstString(raw, "TrackingURL", "tracking_url"),
		LabelURL:              firstString(raw, "LabelURL", "label_url"),
		ManifestURL:           firstString(raw, "ManifestURL", "manifest_url"),
		Status:                status,
		EstimatedDeliveryDate: parseProviderDate(firstString(raw, "EstimatedDeliveryDate")),
		Raw:                   raw,
	}, nil
}

// Track fetches the current carrier status for a tracking or AWB number.
func (s *ShipwayProvider) Track(ctx context.Context, trackingNumber string) (*TrackingResult, error) {
	path := "/TrackOrder?TrackingNumber=" + url.QueryEscape(trackingNumber)
	raw, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("shipway Track: %w", err)
	}

	return &TrackingResult{
		TrackingNumber:        firstString(raw, "TrackingNumber", "AWB"),
		Status:                MapCarrierStatus(firstString(raw, "Status", "CurrentStatus")),
		StatusDescription:     firstString(raw, "StatusDescription", "Description"),
		Location:              firstString(raw, "Location", "CurrentLocation"),
		EstimatedDeliveryDate: parseProviderDate(firstString(raw, "EstimatedDeliveryDate")),
		DeliveredDate:         parseProviderDate(firstString(raw, "DeliveredDate")),
		Raw:                   raw,
	}, nil
}

// Cancel cancels a shipment with Shipway.
func (s *ShipwayProvider) Cancel(ctx context.Context, shipmentID string) error {
	body := map[string]string{"OrderId": shipmentID}
	if _, err := s.doRequest(ctx, http.MethodPost, "/CancelOrder", body); err != nil {
		return fmt.Errorf("shipway Cancel: %w", err)
	}
	return nil
}

// GetLabel retrieves the label for a shipment.
func (s *ShipwayProvider) GetLabel(ctx context.Context, shipmentID string) (*LabelResult, error) {
	path := "/GetLabel?OrderId=" + url.QueryEscape(shipmentID)
	raw, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("shipway GetLabel: %w", err)
	}

	format := firstString(raw, "Format")
	if format == "" {
		format = "PDF"
	}
	return &LabelResult{
		LabelURL: firstString(raw, "LabelURL", "label_url", "url"),
		Format:   format,
	}, nil
}

// ListServiceableCouriers returns carriers that deliver to the pincode.
func (s *ShipwayProvider) ListServiceableCouriers(ctx context.Context, pincode string) ([]Courier, error) {
	path := "/GetCouriers?Pincode=" + url.QueryEscape(pincode)
	raw, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("shipway ListServiceableCouriers: %w", err)
	}

	list, ok := raw["Couriers"].([]interface{})
	if !ok {
		list, _ = raw["couriers"].([]interface{})
	}

	couriers := make([]Courier, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		couriers = append(couriers, Courier{
			ID:   firstString(m, "CourierId", "courier_id", "id"),
			Name: firstString(m, "CourierName", "courier_name", "name"),
		})
	}
	return couriers, nil
}

// ParseWebhook extracts a shipping event from a Shipway webhook body. The
// payload must carry an order number or a tracking number.
func (s *ShipwayProvider) ParseWebhook(payload []byte) (*ShippingEvent, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("shipway ParseWebhook: malformed payload: %w", err)
	}

	orderRef := firstString(raw, "OrderNumber", "order_number", "OrderId")
	trackingNumber := firstString(raw, "TrackingNumber", "AWB", "tracking_number")
	if orderRef == "" && trackingNumber == "" {
		return nil, fmt.Errorf("shipway ParseWebhook: order number and tracking number both missing")
	}

	carrierStatus := firstString(raw, "Status", "status", "CurrentStatus")
	return &ShippingEvent{
		OrderRef:              orderRef,
		TrackingNumber:        trackingNumber,
		CarrierStatus:         carrierStatus,
		Status:                MapCarrierStatus(carrierStatus),
		EstimatedDeliveryDate: parseProviderDate(firstString(raw, "EstimatedDeliveryDate", "estimated_delivery_date")),
		DeliveredDate:         parseProviderDate(firstString(raw, "DeliveredDate", "delivered_date")),
		Raw:                   raw,
	}, nil
}

// ---- HTTP helper ----

func (s *ShipwayProvider) doRequest(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	if s.cfg.Username == "" || s.cfg.Password == "" || s.cfg.LicenseKey == "" {
		return nil, ErrMissingCredentials
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(s.cfg.Username + ":" + s.cfg.Password))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("License-Key", s.cfg.LicenseKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("shipway API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var raw map[string]interface{}
	if len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, &raw); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return raw, nil
}

// ---- conversion helpers ----

// firstString returns the first non-empty string value among keys.
func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				if t != "" {
					return t
				}
			case float64:
				return strings.TrimSuffix(fmt.Sprintf("%v", t), ".0")
			case json.Number:
				return t.String()
			}
		}
	}
	return ""
}

// parseProviderDate parses the date formats Shipway is known to emit.
func parseProviderDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
