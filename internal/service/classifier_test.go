package service

import (
	"strings"
	"testing"

	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/payment/stripe"
)

func TestClassifyExcludesInvoiceBackedCharge(t *testing.T) {
	charges := []stripe.Charge{
		{ID: "ch_sub", PaymentIntentID: "pi_sub", Status: "succeeded"},
	}
	invoices := []stripe.Invoice{
		{ID: "in_1", SubscriptionID: "sub_1", LatestChargeID: "ch_sub", Paid: true},
	}
	classifier := NewClassifier(BuildLinkIndex(charges, invoices, nil), nil, nil)

	decision := classifier.Classify(PaymentRecord{
		Kind:            recordKindCharge,
		ID:              "ch_sub",
		PaymentIntentID: "pi_sub",
	})
	if decision.Include {
		t.Fatalf("invoice-backed charge must be excluded, got %+v", decision)
	}
}

func TestClassifyOrderIDMeansMarketplace(t *testing.T) {
	classifier := NewClassifier(BuildLinkIndex(nil, nil, nil), nil, nil)

	decision := classifier.Classify(PaymentRecord{
		Kind:     recordKindCharge,
		ID:       "ch_store",
		Metadata: stripe.Metadata{"order_id": "ord_42"},
	})
	if decision.Include {
		t.Fatalf("marketplace purchase must be excluded, got %+v", decision)
	}
	if decision.Designation != constants.DesignationMarketplaceSkipped {
		t.Fatalf("designation want %q, got %q", constants.DesignationMarketplaceSkipped, decision.Designation)
	}
}

func TestClassifySessionMetadataOverridesObjectMetadata(t *testing.T) {
	// order_id 在建 Checkout Session 时写入，Session 层最权威
	sessions := []stripe.CheckoutSession{
		{ID: "cs_1", SubscriptionID: "sub_1", Metadata: stripe.Metadata{"order_id": "ord_9"}},
	}
	classifier := NewClassifier(BuildLinkIndex(nil, nil, sessions), nil, nil)

	decision := classifier.Classify(PaymentRecord{
		Kind:           recordKindInvoice,
		ID:             "in_1",
		SubscriptionID: "sub_1",
		Metadata:       stripe.Metadata{"type": "donation"},
	})
	if decision.Include {
		t.Fatalf("invoice backed by marketplace session must be excluded, got %+v", decision)
	}
	if decision.Designation != constants.DesignationMarketplaceSkipped {
		t.Fatalf("designation want %q, got %q", constants.DesignationMarketplaceSkipped, decision.Designation)
	}
}

func TestClassifyLocalSponsorshipBeatsMetadata(t *testing.T) {
	sponsorships := []models.Sponsorship{
		{
			ID:                   3,
			StripeSubscriptionID: "sub_spon",
			Bestie:               &models.Bestie{Name: "Luna"},
		},
	}
	classifier := NewClassifier(BuildLinkIndex(nil, nil, nil), sponsorships, nil)

	// 即便元数据声称是普通捐赠，本地赞助匹配仍优先
	decision := classifier.Classify(PaymentRecord{
		Kind:           recordKindInvoice,
		ID:             "in_2",
		SubscriptionID: "sub_spon",
		Metadata:       stripe.Metadata{"type": "donation"},
	})
	if !decision.Include {
		t.Fatalf("sponsorship record must be included, got %+v", decision)
	}
	if !strings.HasPrefix(decision.Designation, constants.DesignationSponsorship) {
		t.Fatalf("designation must begin with %q, got %q", constants.DesignationSponsorship, decision.Designation)
	}
	if decision.Designation != "Sponsorship: Luna" {
		t.Fatalf("designation want %q, got %q", "Sponsorship: Luna", decision.Designation)
	}
}

func TestClassifyBeneficiaryMetadataResolvesName(t *testing.T) {
	names := map[string]string{"b1": "Max"}
	classifier := NewClassifier(BuildLinkIndex(nil, nil, nil), nil, names)

	decision := classifier.Classify(PaymentRecord{
		Kind:            recordKindCharge,
		ID:              "ch_1",
		PaymentIntentID: "pi_1",
		Metadata:        stripe.Metadata{"bestie_id": "b1"},
	})
	if !decision.Include {
		t.Fatalf("beneficiary-tagged charge must be included, got %+v", decision)
	}
	if decision.Designation != "Sponsorship: Max" {
		t.Fatalf("designation want %q, got %q", "Sponsorship: Max", decision.Designation)
	}
}

func TestClassifyBeneficiaryKeyAliases(t *testing.T) {
	classifier := NewClassifier(BuildLinkIndex(nil, nil, nil), nil, nil)

	for _, key := range []string{"bestie_id", "sponsor_bestie_id", "bestieId"} {
		decision := classifier.Classify(PaymentRecord{
			Kind:     recordKindCharge,
			ID:       "ch_alias",
			Metadata: stripe.Metadata{key: "b7"},
		})
		if !decision.Include || decision.Designation != constants.DesignationSponsorship {
			t.Fatalf("key %s: want bare sponsorship designation, got %+v", key, decision)
		}
	}
}

func TestClassifyExplicitGeneralDonation(t *testing.T) {
	classifier := NewClassifier(BuildLinkIndex(nil, nil, nil), nil, nil)

	for _, metadata := range []stripe.Metadata{
		{"type": "donation"},
		{"donation_type": "general"},
	} {
		decision := classifier.Classify(PaymentRecord{Kind: recordKindCharge, ID: "ch_g", Metadata: metadata})
		if !decision.Include || decision.Designation != constants.DesignationGeneralSupport {
			t.Fatalf("metadata %v: want general support, got %+v", metadata, decision)
		}
	}
}

func TestClassifyDefaultsToGeneralSupport(t *testing.T) {
	classifier := NewClassifier(BuildLinkIndex(nil, nil, nil), nil, nil)

	decision := classifier.Classify(PaymentRecord{Kind: recordKindCharge, ID: "ch_bare"})
	if !decision.Include {
		t.Fatalf("unmatched record must default to inclusion, got %+v", decision)
	}
	if decision.Designation != constants.DesignationGeneralSupport {
		t.Fatalf("designation want %q, got %q", constants.DesignationGeneralSupport, decision.Designation)
	}
	if decision.Reason == "" {
		t.Fatal("default decision must carry a reason")
	}
}

func TestMergeMetadataLaterLayersWin(t *testing.T) {
	merged := MergeMetadata(
		stripe.Metadata{"type": "donation", "note": "own"},
		stripe.Metadata{"note": "subscription"},
		stripe.Metadata{"note": "session", "order_id": "ord_1"},
	)
	if merged.Get("note") != "session" {
		t.Fatalf("session layer must win, got %q", merged.Get("note"))
	}
	if merged.Get("type") != "donation" {
		t.Fatalf("lower layers must survive when not overridden, got %q", merged.Get("type"))
	}
	if merged.Get("order_id") != "ord_1" {
		t.Fatalf("order_id missing from merged metadata: %v", merged)
	}
}
