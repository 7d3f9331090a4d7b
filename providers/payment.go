package providers

import (
	"context"
	"errors"
)

// ErrMissingCredentials indicates the provider was constructed without the
// credentials its API requires. Surfaced at first use.
var ErrMissingCredentials = errors.New("provider credentials are not configured")

// PaymentOutcome is the closed set of payment results the engine folds on.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "SUCCESS"
	PaymentOutcomeFailed  PaymentOutcome = "FAILED"
	PaymentOutcomePending PaymentOutcome = "PENDING"
)

// SessionRequest carries everything the gateway needs to open a payment
// session for an order.
type SessionRequest struct {
	OrderID       string  `json:"orderId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	CustomerID    string  `json:"customerId" binding:"required"`
	CustomerName  string  `json:"customerName,omitempty"`
	CustomerEmail string  `json:"customerEmail" binding:"required,email"`
	CustomerPhone string  `json:"customerPhone" binding:"required"`
	OrderNote     string  `json:"orderNote,omitempty"`
}

// PaymentSession is returned by CreateSession. GatewayOrderID is the
// correlation identifier a later webhook or verify call resolves the order by.
type PaymentSession struct {
	SessionID      string `json:"paymentSessionId"`
	GatewayOrderID string `json:"orderId"`
}

// PaymentResult is the gateway's view of a payment, from a verify poll or a
// webhook. RawStatus preserves the provider's own vocabulary.
type PaymentResult struct {
	GatewayOrderID   string
	GatewayPaymentID string
	RawStatus        string
	Outcome          PaymentOutcome
}

// PaymentProvider defines the payment gateway contract.
type PaymentProvider interface {
	// CreateSession opens a hosted payment session for the order.
	CreateSession(ctx context.Context, req *SessionRequest) (*PaymentSession, error)

	// QueryStatus fetches the current payment state for a gateway order ref.
	QueryStatus(ctx context.Context, gatewayOrderID string) (*PaymentResult, error)

	// ParseWebhook extracts a payment event from a raw webhook payload.
	// It performs structural validation only; it never calls the gateway.
	ParseWebhook(payload []byte) (*PaymentResult, error)
}
