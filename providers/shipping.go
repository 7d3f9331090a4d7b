package providers

import (
	"context"
	"time"

	"storefront-backend/models"
)

// ShipmentRef describes a shipment created with the carrier. Raw preserves
// the full provider response for forward compatibility.
type ShipmentRef struct {
	ShipmentID            string
	TrackingNumber        string
	AWBNumber             string
	CourierName           string
	CourierTrackingURL    string
	LabelURL              string
	ManifestURL           string
	Status                string
	EstimatedDeliveryDate *time.Time
	Raw                   map[string]interface{}
}

// TrackingResult is the carrier's current view of a shipment. Status is
// already mapped onto the closed shipment status set.
type TrackingResult struct {
	TrackingNumber        string
	Status                string
	StatusDescription     string
	Location              string
	EstimatedDeliveryDate *time.Time
	DeliveredDate         *time.Time
	Raw                   map[string]interface{}
}

// ShippingEvent is a parsed inbound carrier webhook. At least one of OrderRef
// and TrackingNumber is set. CarrierStatus is the raw vocabulary; Status is
// the mapped closed-set value.
type ShippingEvent struct {
	OrderRef              string
	TrackingNumber        string
	CarrierStatus         string
	Status                string
	EstimatedDeliveryDate *time.Time
	DeliveredDate         *time.Time
	Raw                   map[string]interface{}
}

// Courier is a carrier serviceable for a destination pincode.
type Courier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabelResult carries a shipment label reference.
type LabelResult struct {
	LabelURL string `json:"labelUrl"`
	Format   string `json:"format"`
}

// ShippingProvider defines the carrier integration contract.
type ShippingProvider interface {
	// CreateShipment registers the order with the carrier and returns the
	// correlation identifiers.
	CreateShipment(ctx context.Context, order *models.Order) (*ShipmentRef, error)

	// Track returns the current status for a tracking or AWB number.
	Track(ctx context.Context, trackingNumber string) (*TrackingResult, error)

	// Cancel cancels a shipment with the carrier.
	Cancel(ctx context.Context, shipmentID string) error

	// GetLabel retrieves the shipping label for a shipment.
	GetLabel(ctx context.Context, shipmentID string) (*LabelResult, error)

	// ListServiceableCouriers returns carriers that deliver to the pincode.
	ListServiceableCouriers(ctx context.Context, pincode string) ([]Courier, error)

	// ParseWebhook extracts a shipping event from a raw webhook payload.
	// Structural validation only; never calls the carrier.
	ParseWebhook(payload []byte) (*ShippingEvent, error)
}
