package service

import (
	"testing"

	"github.com/bestie-next/internal/payment/stripe"
)

func TestBuildLinkIndexInvoiceBackedSet(t *testing.T) {
	charges := []stripe.Charge{
		{ID: "ch_retry_1", PaymentIntentID: "pi_1"},
		{ID: "ch_retry_2", PaymentIntentID: "pi_1"},
		{ID: "ch_single", PaymentIntentID: "pi_2"},
	}
	invoices := []stripe.Invoice{
		{ID: "in_1", ChargeID: "ch_direct", LatestChargeID: "ch_latest", PaymentIntentID: "pi_1"},
	}

	index := BuildLinkIndex(charges, invoices, nil)

	// charge / latest_charge / 经支付意图可达的扣款都进入集合
	for _, chargeID := range []string{"ch_direct", "ch_latest", "ch_retry_1", "ch_retry_2"} {
		if !index.IsInvoiceBacked(chargeID) {
			t.Fatalf("%s must be invoice-backed", chargeID)
		}
	}
	if index.IsInvoiceBacked("ch_single") {
		t.Fatal("ch_single is not referenced by any invoice")
	}
	if got := len(index.ChargesByPaymentIntent["pi_1"]); got != 2 {
		t.Fatalf("pi_1 charge count want 2, got %d", got)
	}
}

func TestBuildLinkIndexSessionMetadataDualKeyed(t *testing.T) {
	sessions := []stripe.CheckoutSession{
		{ID: "cs_pay", PaymentIntentID: "pi_1", Metadata: stripe.Metadata{"k": "payment"}},
		{ID: "cs_sub", SubscriptionID: "sub_1", Metadata: stripe.Metadata{"k": "subscription"}},
	}

	index := BuildLinkIndex(nil, nil, sessions)

	if got := index.SessionMetadata("pi_1", "").Get("k"); got != "payment" {
		t.Fatalf("payment-intent keyed metadata want payment, got %q", got)
	}
	if got := index.SessionMetadata("", "sub_1").Get("k"); got != "subscription" {
		t.Fatalf("subscription keyed metadata want subscription, got %q", got)
	}
	// 支付意图引用优先于订阅引用
	if got := index.SessionMetadata("pi_1", "sub_1").Get("k"); got != "payment" {
		t.Fatalf("payment-intent reference must win, got %q", got)
	}
	if index.SessionMetadata("pi_unknown", "") != nil {
		t.Fatal("unknown reference must return nil metadata")
	}
}

func TestBuildLinkIndexSubscriptionByInvoice(t *testing.T) {
	invoices := []stripe.Invoice{
		{ID: "in_1", SubscriptionID: "sub_1"},
		{ID: "in_2"},
	}
	index := BuildLinkIndex(nil, invoices, nil)
	if index.SubscriptionByInvoice["in_1"] != "sub_1" {
		t.Fatalf("in_1 must link to sub_1, got %q", index.SubscriptionByInvoice["in_1"])
	}
	if _, ok := index.SubscriptionByInvoice["in_2"]; ok {
		t.Fatal("invoice without subscription must not be linked")
	}
}
