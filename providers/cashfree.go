package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	cashfreeSandboxURL    = "https://sandbox.cashfree.com/pg"
	cashfreeProductionURL = "https://api.cashfree.com/pg"
	cashfreeAPIVersion    = "2025-01-01"
)

// CashfreeProvider implements PaymentProvider using the Cashfree PG API.
type CashfreeProvider struct {
	appID      string
	secretKey  string
	baseURL    string
	returnURL  string
	notifyURL  string
	httpClient *http.Client
}

// NewCashfreeProvider creates a CashfreeProvider. env selects the sandbox or
// production API host; returnURL and notifyURL are stamped onto every session.
func NewCashfreeProvider(appID, secretKey, env, returnURL, notifyURL string) *CashfreeProvider {
	baseURL := cashfreeSandboxURL
	if env == "production" {
		baseURL = cashfreeProductionURL
	}
	return &CashfreeProvider{
		appID:     appID,
		secretKey: secretKey,
		baseURL:   baseURL,
		returnURL: returnURL,
		notifyURL: notifyURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- Cashfree API request/response structs ----

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
}

type cashfreeOrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type cashfreeOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     float64           `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails cashfreeCustomer  `json:"customer_details"`
	OrderMeta       cashfreeOrderMeta `json:"order_meta"`
	OrderNote       string            `json:"order_note,omitempty"`
}

type cashfreeOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	PaymentStatus    string `json:"payment_status"`
	PaymentID        string `json:"payment_id"`
	Message          string `json:"message"`
}

type cashfreeWebhookPayload struct {
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			CfPaymentID   json.Number `json:"cf_payment_id"`
			PaymentStatus string      `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

// ---- PaymentProvider implementation ----

// CreateSession creates a Cashfree order, which returns the hosted payment
// session id directly.
func (p *CashfreeProvider) CreateSession(ctx context.Context, req *SessionRequest) (*PaymentSession, error) {
	body := cashfreeOrderRequest{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount,
		OrderCurrency: "INR",
		CustomerDetails: cashfreeCustomer{
			CustomerID:    req.CustomerID,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: normalizePhone(req.CustomerPhone),
			CustomerName:  customerName(req),
		},
		OrderMeta: cashfreeOrderMeta{
			ReturnURL: p.returnURL,
			NotifyURL: p.notifyURL,
		},
		OrderNote: req.OrderNote,
	}

	var resp cashfreeOrderResponse
	if err := p.doRequest(ctx, http.MethodPost, "/orders", body, &resp); err != nil {
		return nil, fmt.Errorf("cashfree CreateSession: %w", err)
	}

	if resp.PaymentSessionID == "" {
		return nil, fmt.Errorf("cashfree CreateSession: payment_session_id missing in response")
	}

	return &PaymentSession{
		SessionID:      resp.PaymentSessionID,
		GatewayOrderID: req.OrderID,
	}, nil
}

// QueryStatus fetches the order from Cashfree and maps its status vocabulary
// onto the closed outcome set.
func (p *CashfreeProvider) QueryStatus(ctx context.Context, gatewayOrderID string) (*PaymentResult, error) {
	var resp cashfreeOrderResponse
	if err := p.doRequest(ctx, http.MethodGet, "/orders/"+gatewayOrderID, nil, &resp); err != nil {
		return nil, fmt.Errorf("cashfree QueryStatus: %w", err)
	}

	return &PaymentResult{
		GatewayOrderID:   resp.OrderID,
		GatewayPaymentID: resp.PaymentID,
		RawStatus:        resp.PaymentStatus,
		Outcome:          mapCashfreeStatus(resp.PaymentStatus),
	}, nil
}

// ParseWebhook extracts the payment event from a Cashfree webhook body.
func (p *CashfreeProvider) ParseWebhook(payload []byte) (*PaymentResult, error) {
	var wh cashfreeWebhookPayload
	if err := json.Unmarshal(payload, &wh); err != nil {
		return nil, fmt.Errorf("cashfree ParseWebhook: malformed payload: %w", err)
	}
	if wh.Data.Order.OrderID == "" {
		return nil, fmt.Errorf("cashfree ParseWebhook: order_id missing")
	}

	return &PaymentResult{
		GatewayOrderID:   wh.Data.Order.OrderID,
		GatewayPaymentID: wh.Data.Payment.CfPaymentID.String(),
		RawStatus:        wh.Data.Payment.PaymentStatus,
		Outcome:          mapCashfreeStatus(wh.Data.Payment.PaymentStatus),
	}, nil
}

// ---- helpers ----

func mapCashfreeStatus(raw string) PaymentOutcome {
	switch raw {
	case "SUCCESS":
		return PaymentOutcomeSuccess
	case "FAILED":
		return PaymentOutcomeFailed
	default:
		return PaymentOutcomePending
	}
}

// normalizePhone ensures a country code prefix; numbers without one are
// assumed to be Indian.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "91") && len(phone) > 10 {
		return "+" + phone
	}
	return "+91" + phone
}

func customerName(req *SessionRequest) string {
	if req.CustomerName != "" {
		return req.CustomerName
	}
	if at := strings.Index(req.CustomerEmail, "@"); at > 0 {
		return req.CustomerEmail[:at]
	}
	return req.CustomerEmail
}

func (p *CashfreeProvider) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if p.appID == "" || p.secretKey == "" {
		return ErrMissingCredentials
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", cashfreeAPIVersion)
	req.Header.Set("x-client-id", p.appID)
	req.Header.Set("x-client-secret", p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cashfree API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
