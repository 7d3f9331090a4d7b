package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status constants. Status is the customer-facing lifecycle and is the
// single source of truth; payment and shipping sub-states feed into it but are
// tracked independently.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment method constants.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Payment status constants.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Shipment status constants. This is the closed set the engine operates on;
// carrier vocabularies are mapped into it inside the Shipway provider.
const (
	ShipmentStatusPending        = "pending"
	ShipmentStatusCreated        = "created"
	ShipmentStatusPicked         = "picked"
	ShipmentStatusInTransit      = "in_transit"
	ShipmentStatusOutForDelivery = "out_for_delivery"
	ShipmentStatusDelivered      = "delivered"
	ShipmentStatusFailed         = "failed"
	ShipmentStatusCancelled      = "cancelled"
)

// IsTerminalStatus reports whether an order status admits no further
// automated transitions.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// IsValidOrderStatus reports whether s is a member of the order status set.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is an immutable snapshot of a product at order time. Price is
// never re-derived from the catalog afterwards.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"product_id" binding:"required"`
	Name      string  `json:"name" bson:"name" binding:"required"`
	Price     float64 `json:"price" bson:"price" binding:"required,gt=0"`
	Quantity  int     `json:"quantity" bson:"quantity" binding:"required,min=1"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
}

// ShippingInfo is the destination contact and address for an order.
type ShippingInfo struct {
	FullName string `json:"fullName" bson:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" bson:"email" binding:"required,email"`
	Phone    string `json:"phone" bson:"phone" binding:"required"`
	Address  string `json:"address" bson:"address" binding:"required,min=5"`
	City     string `json:"city" bson:"city" binding:"required,min=2"`
	State    string `json:"state" bson:"state" binding:"required,min=2"`
	Pincode  string `json:"pincode" bson:"pincode" binding:"required"`
}

// PaymentDetails tracks the payment sub-state and Cashfree correlation ids.
type PaymentDetails struct {
	PaymentStatus            string `json:"paymentStatus" bson:"payment_status"`
	CashfreeOrderID          string `json:"cashfreeOrderId,omitempty" bson:"cashfree_order_id,omitempty"`
	CashfreePaymentID        string `json:"cashfreePaymentId,omitempty" bson:"cashfree_payment_id,omitempty"`
	CashfreePaymentStatus    string `json:"cashfreePaymentStatus,omitempty" bson:"cashfree_payment_status,omitempty"`
	CashfreePaymentSessionID string `json:"cashfreePaymentSessionId,omitempty" bson:"cashfree_payment_session_id,omitempty"`
}

// ShippingDetails tracks the shipment sub-state and Shipway correlation ids.
// ShipwayData carries the raw provider payloads for forward compatibility.
type ShippingDetails struct {
	ShipmentID            string                 `json:"shipmentId,omitempty" bson:"shipment_id,omitempty"`
	TrackingNumber        string                 `json:"trackingNumber,omitempty" bson:"tracking_number,omitempty"`
	AWBNumber             string                 `json:"awbNumber,omitempty" bson:"awb_number,omitempty"`
	CourierName           string                 `json:"courierName,omitempty" bson:"courier_name,omitempty"`
	CourierTrackingURL    string                 `json:"courierTrackingUrl,omitempty" bson:"courier_tracking_url,omitempty"`
	LabelURL              string                 `json:"labelUrl,omitempty" bson:"label_url,omitempty"`
	ManifestURL           string                 `json:"manifestUrl,omitempty" bson:"manifest_url,omitempty"`
	Status                string                 `json:"status" bson:"status"`
	EstimatedDeliveryDate *time.Time             `json:"estimatedDeliveryDate,omitempty" bson:"estimated_delivery_date,omitempty"`
	DeliveredDate         *time.Time             `json:"deliveredDate,omitempty" bson:"delivered_date,omitempty"`
	ShipwayData           map[string]interface{} `json:"shipwayData,omitempty" bson:"shipway_data,omitempty"`
}

// Order is the unit of reconciliation. OrderID is the external, sortable,
// human-shareable identifier (ORD-<timestamp>-<suffix>); ID is the store's
// internal key. Both are valid lookup keys. Version backs the optimistic
// concurrency check on every mutation.
type Order struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	OrderID         string              `json:"orderId" bson:"order_id"`
	Items           []OrderItem         `json:"items" bson:"items"`
	ShippingInfo    ShippingInfo        `json:"shippingInfo" bson:"shipping_info"`
	PaymentMethod   string              `json:"paymentMethod" bson:"payment_method"`
	PaymentDetails  PaymentDetails      `json:"paymentDetails" bson:"payment_details"`
	ShippingDetails ShippingDetails     `json:"shippingDetails" bson:"shipping_details"`
	Subtotal        float64             `json:"subtotal" bson:"subtotal"`
	ShippingCharge  float64             `json:"shippingCharge" bson:"shipping_charge"`
	Discount        float64             `json:"discount" bson:"discount"`
	Coupon          string              `json:"coupon,omitempty" bson:"coupon,omitempty"`
	Total           float64             `json:"total" bson:"total"`
	Status          string              `json:"status" bson:"status"`
	UserID          *primitive.ObjectID `json:"userId,omitempty" bson:"user_id,omitempty"`
	UserEmail       string              `json:"userEmail" bson:"user_email"`
	Notes           string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Version         int64               `json:"-" bson:"version"`
	CreatedAt       time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updated_at"`
}

// HasShipment reports whether a shipment has already been created for the
// order. Used as the duplicate-shipment guard.
func (o *Order) HasShipment() bool {
	return o.ShippingDetails.ShipmentID != ""
}

// CreateOrderRequest is the checkout payload. Subtotal, shipping charge,
// discount and total are optional; missing values are derived at creation.
// A supplied total is trusted and only validated for non-negativity.
type CreateOrderRequest struct {
	Items          []OrderItem     `json:"items" binding:"required,min=1,dive"`
	ShippingInfo   ShippingInfo    `json:"shippingInfo" binding:"required"`
	PaymentMethod  string          `json:"paymentMethod" binding:"required,oneof=cod online"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
	Subtotal       *float64        `json:"subtotal,omitempty" binding:"omitempty,gte=0"`
	ShippingCharge *float64        `json:"shippingCharge,omitempty" binding:"omitempty,gte=0"`
	Discount       *float64        `json:"discount,omitempty" binding:"omitempty,gte=0"`
	Coupon         string          `json:"coupon,omitempty"`
	Total          *float64        `json:"total,omitempty" binding:"omitempty,gte=0"`
	Notes          string          `json:"notes,omitempty"`
}

// UpdateOrderStatusRequest is the administrative status override payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	Notes  string `json:"notes,omitempty"`
}

// UpdatePaymentDetailsRequest carries a full payment sub-state replacement.
type UpdatePaymentDetailsRequest struct {
	PaymentStatus            string `json:"paymentStatus" binding:"required,oneof=pending completed failed"`
	CashfreeOrderID          string `json:"cashfreeOrderId,omitempty"`
	CashfreePaymentID        string `json:"cashfreePaymentId,omitempty"`
	CashfreePaymentStatus    string `json:"cashfreePaymentStatus,omitempty"`
	CashfreePaymentSessionID string `json:"cashfreePaymentSessionId,omitempty"`
}
