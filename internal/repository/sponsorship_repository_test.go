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

func setupSponsorshipRepositoryTest(t *testing.T) (*GormSponsorshipRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Bestie{}, &models.Sponsorship{}); err != nil {
		t.Fatalf("migrate sponsorship models failed: %v", err)
	}
	return NewSponsorshipRepository(db), db
}

func seedBestie(t *testing.T, db *gorm.DB, externalID, name string) *models.Bestie {
	t.Helper()
	bestie := &models.Bestie{
		ExternalID: externalID,
		Name:       name,
		Slug:       strings.ToLower(name),
		IsActive:   true,
	}
	if err := db.Create(bestie).Error; err != nil {
		t.Fatalf("create bestie failed: %v", err)
	}
	return bestie
}

func sponsorEmail(email string) *string {
	return &email
}

func TestListByProviderRefsMatchesSubscriptionAndIntent(t *testing.T) {
	repo, db := setupSponsorshipRepositoryTest(t)
	bestie := seedBestie(t, db, "bst_max", "Max")

	monthly := &models.Sponsorship{
		SponsorEmail:         sponsorEmail("sponsor@example.com"),
		BestieID:             bestie.ID,
		StripeSubscriptionID: "sub_monthly_ref",
		Amount:               models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Currency:             "usd",
		Frequency:            constants.FrequencyMonthly,
		Status:               constants.SponsorshipStatusActive,
		StripeMode:           constants.StripeModeLive,
	}
	oneTime := &models.Sponsorship{
		SponsorEmail:          sponsorEmail("sponsor@example.com"),
		BestieID:              bestie.ID,
		StripePaymentIntentID: "pi_one_time_ref",
		Amount:                models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Currency:              "usd",
		Frequency:             constants.FrequencyOneTime,
		Status:                constants.SponsorshipStatusActive,
		StripeMode:            constants.StripeModeLive,
	}
	for _, sponsorship := range []*models.Sponsorship{monthly, oneTime} {
		if err := repo.Create(sponsorship); err != nil {
			t.Fatalf("create sponsorship failed: %v", err)
		}
	}

	found, err := repo.ListByProviderRefs(constants.StripeModeLive, []string{"sub_monthly_ref", "pi_one_time_ref", "pi_unknown"})
	if err != nil {
		t.Fatalf("list by provider refs failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 sponsorships, got %d", len(found))
	}
	for _, sponsorship := range found {
		if sponsorship.Bestie == nil || sponsorship.Bestie.Name != "Max" {
			t.Fatalf("expected bestie preloaded, got %+v", sponsorship.Bestie)
		}
	}
}

func TestListByProviderRefsScopesByMode(t *testing.T) {
	repo, db := setupSponsorshipRepositoryTest(t)
	bestie := seedBestie(t, db, "bst_mode", "Luna")

	sponsorship := &models.Sponsorship{
		SponsorEmail:         sponsorEmail("sponsor@example.com"),
		BestieID:             bestie.ID,
		StripeSubscriptionID: "sub_test_mode",
		Amount:               models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Currency:             "usd",
		Frequency:            constants.FrequencyMonthly,
		Status:               constants.SponsorshipStatusActive,
		StripeMode:           constants.StripeModeTest,
	}
	if err := repo.Create(sponsorship); err != nil {
		t.Fatalf("create sponsorship failed: %v", err)
	}

	found, err := repo.ListByProviderRefs(constants.StripeModeLive, []string{"sub_test_mode"})
	if err != nil {
		t.Fatalf("list by provider refs failed: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no live-mode sponsorships, got %d", len(found))
	}
}

func TestListByProviderRefsEmptyInput(t *testing.T) {
	repo, _ := setupSponsorshipRepositoryTest(t)

	found, err := repo.ListByProviderRefs(constants.StripeModeLive, []string{"", "  "})
	if err != nil {
		t.Fatalf("list by provider refs failed: %v", err)
	}
	if found != nil {
		t.Fatal("expected nil result for blank refs")
	}
}

func TestSponsorshipIdentityCheckRejectsNeitherSet(t *testing.T) {
	repo, db := setupSponsorshipRepositoryTest(t)
	bestie := seedBestie(t, db, "bst_chk", "Rex")

	sponsorship := &models.Sponsorship{
		BestieID:             bestie.ID,
		StripeSubscriptionID: "sub_identity_chk",
		Amount:               models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Currency:             "usd",
		Frequency:            constants.FrequencyMonthly,
		Status:               constants.SponsorshipStatusActive,
		StripeMode:           constants.StripeModeLive,
	}
	if err := repo.Create(sponsorship); err == nil {
		t.Fatal("expected check constraint violation when neither sponsor_id nor sponsor_email is set")
	}
}
