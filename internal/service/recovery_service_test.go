package service

import (
	"context"
	"testing"

	"github.com/bestie-next/internal/config"
	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/payment/stripe"
	"github.com/bestie-next/internal/queue"
	"github.com/bestie-next/internal/repository"

	"gorm.io/gorm"
)

// 2025-01-01 00:00:00 UTC
const recoveryTestChargeCreated = int64(1735689600)

type recordingEmailSender struct {
	sentTo []string
	inputs []ReceiptEmailInput
}

func (s *recordingEmailSender) SendReceiptEmail(toEmail string, input ReceiptEmailInput) error {
	s.sentTo = append(s.sentTo, toEmail)
	s.inputs = append(s.inputs, input)
	return nil
}

func newRecoveryServiceForTest(t *testing.T, gateway StripeGateway) (*RecoveryService, *gorm.DB, *recordingEmailSender) {
	t.Helper()
	db := openServiceTestDB(t, &models.Profile{}, &models.Donation{}, &models.Receipt{})

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("build queue client failed: %v", err)
	}
	sender := &recordingEmailSender{}
	receiptService := NewReceiptService(
		repository.NewReceiptRepository(db),
		queueClient,
		sender,
		config.OrgConfig{Name: "Besties Rescue", EIN: "12-3456789", Address: "1 Barn Road"},
	)

	gateways := NewGatewaySetWithGateways(constants.StripeModeLive, map[string]StripeGateway{
		constants.StripeModeLive: gateway,
	})
	svc := NewRecoveryService(gateways, repository.NewProfileRepository(db), repository.NewDonationRepository(db), receiptService)
	return svc, db, sender
}

func succeededCharge(id, intentID string) *stripe.Charge {
	return &stripe.Charge{
		ID:              id,
		Amount:          2999,
		Currency:        "usd",
		Created:         recoveryTestChargeCreated,
		Status:          constants.StripeChargeSucceeded,
		Paid:            true,
		CustomerID:      "cus_1",
		PaymentIntentID: intentID,
	}
}

func TestRecoverCreatesDonationAndReceipt(t *testing.T) {
	gateway := &fakeGateway{
		customersByID: map[string]*stripe.Customer{
			"cus_1": {ID: "cus_1", Email: "Alice@Example.com", Name: "Alice"},
		},
		chargesByID: map[string]*stripe.Charge{
			"ch_1": succeededCharge("ch_1", "pi_1"),
		},
		intentsByID: map[string]*stripe.PaymentIntent{
			"pi_1": {ID: "pi_1", Amount: 2999, Currency: "usd"},
		},
	}
	svc, db, sender := newRecoveryServiceForTest(t, gateway)

	report, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_1"})
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if report.Summary.Requested != 1 || report.Summary.Recovered != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}

	result := report.Results[0]
	if result.Status != RecoveryStatusRecovered {
		t.Fatalf("status want recovered, got %s (%s)", result.Status, result.Reason)
	}
	if result.ReceiptNo != "2025-000001" {
		t.Fatalf("receipt number want 2025-000001, got %s", result.ReceiptNo)
	}
	if !result.ReceiptSent {
		t.Fatal("receipt email must be reported as sent")
	}
	if len(sender.sentTo) != 1 || sender.sentTo[0] != "alice@example.com" {
		t.Fatalf("receipt email recipient want alice@example.com, got %v", sender.sentTo)
	}

	var donation models.Donation
	if err := db.First(&donation, result.DonationID).Error; err != nil {
		t.Fatalf("load donation failed: %v", err)
	}
	if donation.DonorID != nil {
		t.Fatal("unregistered donor must not get a donor_id")
	}
	if donation.DonorEmail == nil || *donation.DonorEmail != "alice@example.com" {
		t.Fatalf("donor email want alice@example.com, got %v", donation.DonorEmail)
	}
	if donation.Amount.String() != "29.99" {
		t.Fatalf("donation amount want 29.99, got %s", donation.Amount.String())
	}
	if donation.Status != constants.DonationStatusCompleted {
		t.Fatalf("donation status want completed, got %s", donation.Status)
	}

	var receipt models.Receipt
	if err := db.Where("transaction_id = ?", "ch_1").First(&receipt).Error; err != nil {
		t.Fatalf("load receipt failed: %v", err)
	}
	if receipt.TaxYear != 2025 {
		t.Fatalf("tax year want 2025, got %d", receipt.TaxYear)
	}
	if receipt.OrgEIN != "12-3456789" {
		t.Fatalf("org ein missing from receipt, got %q", receipt.OrgEIN)
	}
}

func TestRecoverSecondRunIsIdempotent(t *testing.T) {
	gateway := &fakeGateway{
		customersByID: map[string]*stripe.Customer{
			"cus_1": {ID: "cus_1", Email: "alice@example.com", Name: "Alice"},
		},
		chargesByID: map[string]*stripe.Charge{
			"ch_1": succeededCharge("ch_1", "pi_1"),
		},
		intentsByID: map[string]*stripe.PaymentIntent{
			"pi_1": {ID: "pi_1"},
		},
	}
	svc, db, _ := newRecoveryServiceForTest(t, gateway)

	if _, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_1"}); err != nil {
		t.Fatalf("first recover failed: %v", err)
	}
	report, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_1"})
	if err != nil {
		t.Fatalf("second recover failed: %v", err)
	}

	result := report.Results[0]
	if result.Status != RecoveryStatusSkipped {
		t.Fatalf("second run status want skipped, got %s", result.Status)
	}
	if result.Reason != "Donation already exists for this charge" {
		t.Fatalf("unexpected skip reason: %q", result.Reason)
	}

	var count int64
	if err := db.Model(&models.Donation{}).Count(&count).Error; err != nil {
		t.Fatalf("count donations failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 donation after rerun, got %d", count)
	}
}

func TestRecoverSecondRunIsIdempotentWithoutPaymentIntent(t *testing.T) {
	// 老式直连 API 扣款没有支付意图，去重必须退回扣款 ID
	gateway := &fakeGateway{
		customersByID: map[string]*stripe.Customer{
			"cus_1": {ID: "cus_1", Email: "alice@example.com", Name: "Alice"},
		},
		chargesByID: map[string]*stripe.Charge{
			"ch_legacy": succeededCharge("ch_legacy", ""),
		},
	}
	svc, db, _ := newRecoveryServiceForTest(t, gateway)

	first, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_legacy"})
	if err != nil {
		t.Fatalf("first recover failed: %v", err)
	}
	if first.Results[0].Status != RecoveryStatusRecovered {
		t.Fatalf("first run status want recovered, got %s (%s)", first.Results[0].Status, first.Results[0].Reason)
	}

	report, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_legacy"})
	if err != nil {
		t.Fatalf("second recover failed: %v", err)
	}
	result := report.Results[0]
	if result.Status != RecoveryStatusSkipped {
		t.Fatalf("second run status want skipped, got %s (%s)", result.Status, result.Reason)
	}
	if result.Reason != "Donation already exists for this charge" {
		t.Fatalf("unexpected skip reason: %q", result.Reason)
	}

	var count int64
	if err := db.Model(&models.Donation{}).Count(&count).Error; err != nil {
		t.Fatalf("count donations failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 donation after rerun, got %d", count)
	}
}

func TestRecoverRefusesBeneficiaryEarmarkedCharge(t *testing.T) {
	charge := succeededCharge("ch_spon", "pi_spon")
	gateway := &fakeGateway{
		customersByID: map[string]*stripe.Customer{
			"cus_1": {ID: "cus_1", Email: "alice@example.com"},
		},
		chargesByID: map[string]*stripe.Charge{"ch_spon": charge},
		intentsByID: map[string]*stripe.PaymentIntent{
			// 受助对象标记在支付意图层，扣款本体没有
			"pi_spon": {ID: "pi_spon", Metadata: stripe.Metadata{"bestie_id": "b1"}},
		},
	}
	svc, db, _ := newRecoveryServiceForTest(t, gateway)

	report, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_spon"})
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	result := report.Results[0]
	if result.Status != RecoveryStatusSkipped {
		t.Fatalf("status want skipped, got %s (%s)", result.Status, result.Reason)
	}
	if result.Reason != "charge is earmarked for beneficiary b1; it belongs to the sponsorship subsystem" {
		t.Fatalf("unexpected refusal reason: %q", result.Reason)
	}

	var count int64
	if err := db.Model(&models.Donation{}).Count(&count).Error; err != nil {
		t.Fatalf("count donations failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("beneficiary charge must not produce a donation, got %d", count)
	}
}

func TestRecoverLinksRegisteredDonorByID(t *testing.T) {
	gateway := &fakeGateway{
		customersByID: map[string]*stripe.Customer{
			"cus_1": {ID: "cus_1", Email: "member@example.com", Name: "Member"},
		},
		chargesByID: map[string]*stripe.Charge{
			"ch_m": succeededCharge("ch_m", "pi_m"),
		},
		intentsByID: map[string]*stripe.PaymentIntent{
			"pi_m": {ID: "pi_m"},
		},
	}
	svc, db, _ := newRecoveryServiceForTest(t, gateway)

	profile := &models.Profile{Email: "member@example.com", PasswordHash: "x", Status: constants.UserStatusActive}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}

	report, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_m"})
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	result := report.Results[0]
	if result.Status != RecoveryStatusRecovered {
		t.Fatalf("status want recovered, got %s (%s)", result.Status, result.Reason)
	}

	var donation models.Donation
	if err := db.First(&donation, result.DonationID).Error; err != nil {
		t.Fatalf("load donation failed: %v", err)
	}
	if donation.DonorID == nil || *donation.DonorID != profile.ID {
		t.Fatalf("donation must link to profile %d, got %v", profile.ID, donation.DonorID)
	}
	if donation.DonorEmail != nil {
		t.Fatal("registered donor must not duplicate email on the donation row")
	}
}

func TestRecoverSkipsNonSucceededAndReportsMissing(t *testing.T) {
	pending := succeededCharge("ch_pend", "pi_pend")
	pending.Status = "pending"
	gateway := &fakeGateway{
		chargesByID: map[string]*stripe.Charge{"ch_pend": pending},
	}
	svc, _, _ := newRecoveryServiceForTest(t, gateway)

	report, err := svc.Recover(context.Background(), constants.StripeModeLive, []string{"ch_pend", "ch_missing", "  "})
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	// 空白 ID 直接忽略，不计入批次
	if report.Summary.Requested != 2 {
		t.Fatalf("requested want 2, got %d", report.Summary.Requested)
	}
	if report.Summary.Skipped != 1 || report.Summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if report.Results[0].Status != RecoveryStatusSkipped {
		t.Fatalf("pending charge must be skipped, got %s", report.Results[0].Status)
	}
	if report.Results[1].Status != RecoveryStatusFailed {
		t.Fatalf("missing charge must fail, got %s", report.Results[1].Status)
	}
}

func TestRecoverRejectsUnknownMode(t *testing.T) {
	svc, _, _ := newRecoveryServiceForTest(t, &fakeGateway{})
	if _, err := svc.Recover(context.Background(), "sandbox", []string{"ch_1"}); err == nil {
		t.Fatal("unknown mode must be rejected")
	}
}
