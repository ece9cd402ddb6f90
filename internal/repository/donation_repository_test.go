package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDonationRepositoryTest(t *testing.T) (*GormDonationRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Donation{}); err != nil {
		t.Fatalf("migrate donation models failed: %v", err)
	}
	return NewDonationRepository(db), db
}

func donorEmail(email string) *string {
	return &email
}

func TestGetByPaymentIntentAndModeScopesByMode(t *testing.T) {
	repo, _ := setupDonationRepositoryTest(t)

	donation := &models.Donation{
		DonorEmail:            donorEmail("alice@example.com"),
		Amount:                models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		Currency:              "usd",
		Frequency:             constants.FrequencyOneTime,
		Status:                constants.DonationStatusCompleted,
		StripePaymentIntentID: "pi_mode_scope",
		StripeMode:            constants.StripeModeTest,
	}
	if err := repo.Create(donation); err != nil {
		t.Fatalf("create donation failed: %v", err)
	}

	found, err := repo.GetByPaymentIntentAndMode("pi_mode_scope", constants.StripeModeTest)
	if err != nil {
		t.Fatalf("get by payment intent failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected donation in test mode")
	}

	other, err := repo.GetByPaymentIntentAndMode("pi_mode_scope", constants.StripeModeLive)
	if err != nil {
		t.Fatalf("get by payment intent failed: %v", err)
	}
	if other != nil {
		t.Fatal("expected no donation in live mode")
	}
}

func TestGetByPaymentIntentAndModeEmptyIntent(t *testing.T) {
	repo, _ := setupDonationRepositoryTest(t)

	found, err := repo.GetByPaymentIntentAndMode("  ", constants.StripeModeLive)
	if err != nil {
		t.Fatalf("get by payment intent failed: %v", err)
	}
	if found != nil {
		t.Fatal("expected nil for blank payment intent id")
	}
}

func TestGetByChargeIDAndModeScopesByMode(t *testing.T) {
	repo, _ := setupDonationRepositoryTest(t)

	donation := &models.Donation{
		DonorEmail:     donorEmail("alice@example.com"),
		Amount:         models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Currency:       "usd",
		Frequency:      constants.FrequencyOneTime,
		Status:         constants.DonationStatusCompleted,
		StripeChargeID: "ch_legacy_scope",
		StripeMode:     constants.StripeModeTest,
	}
	if err := repo.Create(donation); err != nil {
		t.Fatalf("create donation failed: %v", err)
	}

	found, err := repo.GetByChargeIDAndMode("ch_legacy_scope", constants.StripeModeTest)
	if err != nil {
		t.Fatalf("get by charge id failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected donation in test mode")
	}

	other, err := repo.GetByChargeIDAndMode("ch_legacy_scope", constants.StripeModeLive)
	if err != nil {
		t.Fatalf("get by charge id failed: %v", err)
	}
	if other != nil {
		t.Fatal("expected no donation in live mode")
	}

	blank, err := repo.GetByChargeIDAndMode("  ", constants.StripeModeTest)
	if err != nil {
		t.Fatalf("get by charge id failed: %v", err)
	}
	if blank != nil {
		t.Fatal("expected nil for blank charge id")
	}
}

func TestListByDonorEmailIgnoresCase(t *testing.T) {
	repo, _ := setupDonationRepositoryTest(t)

	donation := &models.Donation{
		DonorEmail:            donorEmail("Bob@Example.com"),
		Amount:                models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Currency:              "usd",
		Frequency:             constants.FrequencyMonthly,
		Status:                constants.DonationStatusCompleted,
		StripePaymentIntentID: "pi_case_test",
		StripeMode:            constants.StripeModeLive,
	}
	if err := repo.Create(donation); err != nil {
		t.Fatalf("create donation failed: %v", err)
	}

	donations, err := repo.ListByDonorEmail("bob@example.COM")
	if err != nil {
		t.Fatalf("list by donor email failed: %v", err)
	}
	if len(donations) != 1 {
		t.Fatalf("expected 1 donation, got %d", len(donations))
	}
}

func TestDonationIdentityCheckRejectsBothSet(t *testing.T) {
	repo, db := setupDonationRepositoryTest(t)

	profile := &models.Profile{Email: "carol@example.com", PasswordHash: "x"}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}

	donation := &models.Donation{
		DonorID:               &profile.ID,
		DonorEmail:            donorEmail("carol@example.com"),
		Amount:                models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Currency:              "usd",
		Frequency:             constants.FrequencyOneTime,
		Status:                constants.DonationStatusCompleted,
		StripePaymentIntentID: "pi_both_identities",
		StripeMode:            constants.StripeModeLive,
	}
	if err := repo.Create(donation); err == nil {
		t.Fatal("expected check constraint violation when both donor_id and donor_email are set")
	}
}

func TestDonationIdentityCheckRejectsNeitherSet(t *testing.T) {
	repo, _ := setupDonationRepositoryTest(t)

	donation := &models.Donation{
		Amount:                models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Currency:              "usd",
		Frequency:             constants.FrequencyOneTime,
		Status:                constants.DonationStatusCompleted,
		StripePaymentIntentID: "pi_no_identity",
		StripeMode:            constants.StripeModeLive,
	}
	if err := repo.Create(donation); err == nil {
		t.Fatal("expected check constraint violation when neither donor_id nor donor_email is set")
	}
}

func TestListFiltersByModeAndStatus(t *testing.T) {
	repo, _ := setupDonationRepositoryTest(t)

	seed := []struct {
		intent string
		mode   string
		status string
	}{
		{"pi_f1", constants.StripeModeLive, constants.DonationStatusCompleted},
		{"pi_f2", constants.StripeModeLive, constants.DonationStatusPending},
		{"pi_f3", constants.StripeModeTest, constants.DonationStatusCompleted},
	}
	for _, item := range seed {
		donation := &models.Donation{
			DonorEmail:            donorEmail("dave@example.com"),
			Amount:                models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			Currency:              "usd",
			Frequency:             constants.FrequencyOneTime,
			Status:                item.status,
			StripePaymentIntentID: item.intent,
			StripeMode:            item.mode,
		}
		if err := repo.Create(donation); err != nil {
			t.Fatalf("create donation %s failed: %v", item.intent, err)
		}
	}

	donations, total, err := repo.List(DonationListFilter{
		Page:       1,
		PageSize:   10,
		Status:     constants.DonationStatusCompleted,
		StripeMode: constants.StripeModeLive,
	})
	if err != nil {
		t.Fatalf("list donations failed: %v", err)
	}
	if total != 1 || len(donations) != 1 {
		t.Fatalf("expected 1 donation, got total=%d len=%d", total, len(donations))
	}
	if donations[0].StripePaymentIntentID != "pi_f1" {
		t.Fatalf("unexpected donation: %s", donations[0].StripePaymentIntentID)
	}
}
