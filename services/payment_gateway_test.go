package services

import (
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedStripePayload(t *testing.T, payload string) *webhook.SignedPayload {
	t.Helper()
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
}

func TestStripeGateway_VerifyWebhook(t *testing.T) {
	gw := NewStripeGateway("sk_test_unused", testWebhookSecret)
	payload := `{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "metadata": {"transactionId": "TXN-1-abcd"}}}
	}`
	signed := signedStripePayload(t, payload)

	evt, err := gw.VerifyWebhook(signed.Payload, signed.Header)
	if err != nil {
		t.Fatalf("VerifyWebhook: %v", err)
	}
	if evt.Type != WebhookPaymentSucceeded || evt.IntentID != "pi_123" || evt.TransactionID != "TXN-1-abcd" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestStripeGateway_VerifyWebhookRejectsBadSignature(t *testing.T) {
	gw := NewStripeGateway("sk_test_unused", testWebhookSecret)
	signed := signedStripePayload(t, `{"id":"evt_1","object":"event","type":"payment_intent.succeeded"}`)

	if _, err := gw.VerifyWebhook(signed.Payload, "t=1,v1=deadbeef"); err == nil {
		t.Error("expected error for a forged signature")
	}

	other := NewStripeGateway("sk_test_unused", "whsec_other")
	if _, err := other.VerifyWebhook(signed.Payload, signed.Header); err == nil {
		t.Error("expected error for a payload signed with another secret")
	}
}

func TestMinorUnits(t *testing.T) {
	tests := map[float64]int64{25.50: 2550, 0.1: 10, 19.99: 1999, 100: 10000}
	for in, want := range tests {
		if got := minorUnits(in); got != want {
			t.Errorf("minorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}
