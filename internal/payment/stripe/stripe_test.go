package stripe

import (
	"testing"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{SecretKey: " sk_test_123 "})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.cfg.SecretKey != "sk_test_123" {
		t.Fatalf("unexpected secret key: %s", client.cfg.SecretKey)
	}
	if client.cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected default api base url: %s", client.cfg.APIBaseURL)
	}
	if client.cfg.Timeout != defaultTimeout {
		t.Fatalf("unexpected default timeout: %v", client.cfg.Timeout)
	}
}

func TestNewClientRequiresSecretKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected secret key error")
	}
}

func TestReadIDNormalizesBareAndExpanded(t *testing.T) {
	raw := map[string]interface{}{
		"payment_intent": " pi_123 ",
		"customer": map[string]interface{}{
			"id":    "cus_456",
			"email": "donor@example.com",
		},
		"invoice": nil,
		"charge":  12345,
	}
	if got := ReadID(raw, "payment_intent"); got != "pi_123" {
		t.Fatalf("unexpected bare id: %s", got)
	}
	if got := ReadID(raw, "customer"); got != "cus_456" {
		t.Fatalf("unexpected expanded id: %s", got)
	}
	if got := ReadID(raw, "invoice"); got != "" {
		t.Fatalf("expected empty id for nil, got: %s", got)
	}
	if got := ReadID(raw, "charge"); got != "" {
		t.Fatalf("expected empty id for non-string, got: %s", got)
	}
	if got := ReadID(raw, "missing"); got != "" {
		t.Fatalf("expected empty id for missing key, got: %s", got)
	}
}

func TestParseChargeNormalizesReferences(t *testing.T) {
	charge := parseCharge(map[string]interface{}{
		"id":       "ch_1",
		"amount":   float64(2999),
		"currency": "USD",
		"created":  float64(1760000000),
		"status":   "succeeded",
		"paid":     true,
		"customer": map[string]interface{}{"id": "cus_1"},
		"payment_intent": "pi_1",
		"invoice":  map[string]interface{}{"id": "in_1"},
		"metadata": map[string]interface{}{
			"bestie_id": "b1",
			"attempt":   float64(2),
		},
	})
	if charge.ID != "ch_1" || charge.Amount != 2999 || charge.Currency != "usd" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
	if charge.CustomerID != "cus_1" || charge.PaymentIntentID != "pi_1" || charge.InvoiceID != "in_1" {
		t.Fatalf("unexpected charge references: %+v", charge)
	}
	if charge.Metadata.Get("bestie_id") != "b1" {
		t.Fatalf("unexpected metadata: %+v", charge.Metadata)
	}
	if charge.Metadata.Get("attempt") != "2" {
		t.Fatalf("numeric metadata not normalized: %+v", charge.Metadata)
	}
}

func TestParseInvoiceCollectsChargeReferences(t *testing.T) {
	invoice := parseInvoice(map[string]interface{}{
		"id":             "in_1",
		"amount_paid":    float64(500),
		"currency":       "usd",
		"status":         "paid",
		"paid":           true,
		"customer":       "cus_1",
		"subscription":   map[string]interface{}{"id": "sub_1"},
		"payment_intent": "pi_1",
		"charge":         "ch_1",
		"latest_charge":  map[string]interface{}{"id": "ch_2"},
	})
	if invoice.SubscriptionID != "sub_1" {
		t.Fatalf("unexpected subscription id: %s", invoice.SubscriptionID)
	}
	if invoice.ChargeID != "ch_1" || invoice.LatestChargeID != "ch_2" {
		t.Fatalf("unexpected charge references: %+v", invoice)
	}
	if invoice.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected payment intent id: %s", invoice.PaymentIntentID)
	}
}

func TestParseSubscriptionAmountFallsBackToItems(t *testing.T) {
	subscription := parseSubscription(map[string]interface{}{
		"id":       "sub_1",
		"status":   "active",
		"customer": "cus_1",
		"items": map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{
					"price": map[string]interface{}{
						"unit_amount": float64(1500),
						"currency":    "usd",
						"recurring": map[string]interface{}{
							"interval": "month",
						},
					},
				},
			},
		},
	})
	if subscription.Amount != 1500 {
		t.Fatalf("unexpected amount: %d", subscription.Amount)
	}
	if subscription.Interval != "month" {
		t.Fatalf("unexpected interval: %s", subscription.Interval)
	}
}

func TestParseSubscriptionPrefersPlan(t *testing.T) {
	subscription := parseSubscription(map[string]interface{}{
		"id": "sub_2",
		"plan": map[string]interface{}{
			"amount":   float64(2500),
			"currency": "usd",
			"interval": "month",
		},
		"cancel_at_period_end": true,
	})
	if subscription.Amount != 2500 || subscription.Interval != "month" {
		t.Fatalf("unexpected subscription: %+v", subscription)
	}
	if !subscription.CancelAtPeriodEnd {
		t.Fatalf("expected cancel_at_period_end to be set")
	}
}
