package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokokas/backend/internal/domain"
)

func signedNotification(orderID, statusCode, grossAmount, serverKey string) StatusNotification {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return StatusNotification{
		OrderID:      orderID,
		StatusCode:   statusCode,
		GrossAmount:  grossAmount,
		SignatureKey: hex.EncodeToString(sum[:]),
	}
}

func TestVerifySignature(t *testing.T) {
	notification := signedNotification("order-1", "200", "50000.00", "server-key")

	if !notification.VerifySignature("server-key") {
		t.Fatalf("expected valid signature to verify")
	}
	if notification.VerifySignature("other-key") {
		t.Fatalf("expected verification to fail with wrong server key")
	}

	tampered := notification
	tampered.GrossAmount = "99999.00"
	if tampered.VerifySignature("server-key") {
		t.Fatalf("expected verification to fail on tampered amount")
	}

	empty := StatusNotification{OrderID: "order-1"}
	if empty.VerifySignature("server-key") {
		t.Fatalf("expected verification to fail without signature")
	}
}

func TestPaymentStatusMapping(t *testing.T) {
	cases := []struct {
		transactionStatus string
		fraudStatus       string
		want              string
	}{
		{"settlement", "", domain.PaymentStatusPaid},
		{"capture", "accept", domain.PaymentStatusPaid},
		{"capture", "", domain.PaymentStatusPaid},
		{"capture", "challenge", domain.PaymentStatusPending},
		{"pending", "", domain.PaymentStatusPending},
		{"deny", "", domain.PaymentStatusFailed},
		{"cancel", "", domain.PaymentStatusFailed},
		{"expire", "", domain.PaymentStatusFailed},
		{"failure", "", domain.PaymentStatusFailed},
		{"refund", "", domain.PaymentStatusRefunded},
		{"partial_refund", "", domain.PaymentStatusRefunded},
		{"something_new", "", ""},
	}

	for _, tc := range cases {
		n := StatusNotification{TransactionStatus: tc.transactionStatus, FraudStatus: tc.fraudStatus}
		if got := n.PaymentStatus(); got != tc.want {
			t.Fatalf("status %q fraud %q: expected %q, got %q", tc.transactionStatus, tc.fraudStatus, tc.want, got)
		}
	}
}

func TestPaymentMethodMapping(t *testing.T) {
	cases := map[string]string{
		"qris":          domain.PaymentMethodQRIS,
		"gopay":         domain.PaymentMethodQRIS,
		"shopeepay":     domain.PaymentMethodQRIS,
		"credit_card":   domain.PaymentMethodCard,
		"debit_card":    domain.PaymentMethodCard,
		"bank_transfer": domain.PaymentMethodTransfer,
		"echannel":      domain.PaymentMethodTransfer,
		"cstore":        domain.PaymentMethodCash,
		"":              domain.PaymentMethodCash,
	}

	for paymentType, want := range cases {
		n := StatusNotification{PaymentType: paymentType}
		if got := n.PaymentMethod(); got != want {
			t.Fatalf("payment type %q: expected %q, got %q", paymentType, want, got)
		}
	}
}

func TestSettledAt(t *testing.T) {
	n := StatusNotification{SettlementTime: "2026-08-30 14:05:00"}
	at := n.SettledAt()
	if at == nil {
		t.Fatalf("expected parsed settlement time")
	}
	if at.Hour() != 14 || at.Minute() != 5 {
		t.Fatalf("unexpected settlement time: %v", at)
	}

	if (StatusNotification{}).SettledAt() != nil {
		t.Fatalf("expected nil for empty settlement time")
	}
	if (StatusNotification{SettlementTime: "not-a-time"}).SettledAt() != nil {
		t.Fatalf("expected nil for malformed settlement time")
	}
}

func TestClientFetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/order-77/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Errorf("expected basic auth on status request")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(StatusNotification{
			OrderID:           "order-77",
			TransactionStatus: "settlement",
		})
	}))
	defer server.Close()

	client := NewClient("server-key", server.URL)
	notification, err := client.FetchStatus(context.Background(), "order-77")
	if err != nil {
		t.Fatalf("fetch status failed: %v", err)
	}
	if notification.OrderID != "order-77" || notification.TransactionStatus != "settlement" {
		t.Fatalf("unexpected notification: %+v", notification)
	}
}

func TestClientDisabledWithoutServerKey(t *testing.T) {
	client := NewClient("", "")
	if client.Enabled() {
		t.Fatalf("expected client without server key to be disabled")
	}
	if _, err := client.FetchStatus(context.Background(), "order-1"); err == nil {
		t.Fatalf("expected fetch on disabled client to fail")
	}
}
