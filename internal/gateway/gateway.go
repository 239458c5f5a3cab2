// Package gateway bridges the payment gateway's notification and status-poll
// contract into domain payment semantics. The gateway delivers webhooks
// at-least-once, possibly out of order; everything here is a pure translation
// so the service layer can stay idempotent.
package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tokokas/backend/internal/domain"
)

// StatusNotification is the gateway's transaction status payload, shared by
// the webhook body and the status-poll response.
type StatusNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
	SettlementTime    string `json:"settlement_time"`
}

// VerifySignature checks the gateway's SHA-512 signature over
// order_id + status_code + gross_amount + server_key.
func (n StatusNotification) VerifySignature(serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// PaymentStatus maps the gateway transaction status onto the sale payment
// status. An empty result means the notification carries no actionable
// transition and should be ignored.
func (n StatusNotification) PaymentStatus() string {
	switch n.TransactionStatus {
	case "settlement":
		return domain.PaymentStatusPaid
	case "capture":
		if n.FraudStatus == "" || n.FraudStatus == "accept" {
			return domain.PaymentStatusPaid
		}
		return domain.PaymentStatusPending
	case "pending":
		return domain.PaymentStatusPending
	case "deny", "cancel", "expire", "failure":
		return domain.PaymentStatusFailed
	case "refund", "partial_refund":
		return domain.PaymentStatusRefunded
	default:
		return ""
	}
}

// PaymentMethod maps the gateway payment type onto one of the four
// reconciliation buckets.
func (n StatusNotification) PaymentMethod() string {
	switch n.PaymentType {
	case "qris", "gopay", "shopeepay":
		return domain.PaymentMethodQRIS
	case "credit_card", "debit_card":
		return domain.PaymentMethodCard
	case "bank_transfer", "echannel":
		return domain.PaymentMethodTransfer
	default:
		return domain.PaymentMethodCash
	}
}

// SettledAt parses the gateway settlement timestamp, falling back to nil when
// the field is absent or malformed.
func (n StatusNotification) SettledAt() *time.Time {
	if n.SettlementTime == "" {
		return nil
	}
	at, err := time.Parse("2006-01-02 15:04:05", n.SettlementTime)
	if err != nil {
		return nil
	}
	utc := at.UTC()
	return &utc
}

// Client polls the gateway's transaction status API. It backs the manual
// re-check endpoint; the webhook path does not need it.
type Client struct {
	serverKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(serverKey string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.sandbox.midtrans.com"
	}
	return &Client{
		serverKey:  serverKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.serverKey != ""
}

func (c *Client) FetchStatus(ctx context.Context, orderID string) (*StatusNotification, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("payment gateway is not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("order id required")
	}

	endpoint := fmt.Sprintf("%s/v2/%s/status", c.baseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.serverKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gateway has no transaction for order %s", orderID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status request failed with %d", resp.StatusCode)
	}

	var notification StatusNotification
	if err := json.NewDecoder(resp.Body).Decode(&notification); err != nil {
		return nil, err
	}
	return &notification, nil
}
