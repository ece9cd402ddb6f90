package main

import (
	"fmt"

	"github.com/bestie-next/internal/config"
	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/logger"
	"github.com/bestie-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加受助对象
	besties := []models.Bestie{
		{
			ExternalID:  "bestie_max",
			Name:        "Max",
			Slug:        "max",
			Description: "Senior shepherd mix, arrived 2023. Ongoing joint treatment.",
			IsActive:    true,
		},
		{
			ExternalID:  "bestie_luna",
			Name:        "Luna",
			Slug:        "luna",
			Description: "Rescued mare, permanent sanctuary resident.",
			IsActive:    true,
		},
		{
			ExternalID:  "bestie_oreo",
			Name:        "Oreo",
			Slug:        "oreo",
			Description: "Pygmy goat, adopted out in 2024. Kept for historical sponsorships.",
			IsActive:    false,
		},
	}

	for _, b := range besties {
		var existing models.Bestie
		if err := models.DB.Where("slug = ?", b.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&b).Error; err != nil {
				stdLog.Printf("Failed to create bestie %s: %v", b.Slug, err)
			} else {
				stdLog.Printf("Created bestie: %s", b.Slug)
			}
		} else {
			existing.ExternalID = b.ExternalID
			existing.Name = b.Name
			existing.Description = b.Description
			existing.IsActive = b.IsActive
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update bestie %s: %v", b.Slug, err)
			} else {
				stdLog.Printf("Updated bestie: %s", b.Slug)
			}
		}
	}

	// 获取受助对象 ID
	bestieIDs := map[string]uint{}
	var bestieList []models.Bestie
	if err := models.DB.Where("slug IN ?", []string{"max", "luna", "oreo"}).Find(&bestieList).Error; err != nil {
		stdLog.Printf("Failed to load besties: %v", err)
	}
	for _, b := range bestieList {
		bestieIDs[b.Slug] = b.ID
	}
	maxID := bestieIDs["max"]
	lunaID := bestieIDs["luna"]

	// 添加捐赠人账号
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}
	profiles := []models.Profile{
		{
			Email:            "alice@example.com",
			PasswordHash:     string(passwordHash),
			DisplayName:      "Alice",
			Status:           constants.UserStatusActive,
			StripeCustomerID: "cus_seed_alice",
		},
		{
			Email:        "bob@example.com",
			PasswordHash: string(passwordHash),
			DisplayName:  "Bob",
			Status:       constants.UserStatusActive,
		},
	}

	for _, p := range profiles {
		var existing models.Profile
		if err := models.DB.Where("email = ?", p.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create profile %s: %v", p.Email, err)
			} else {
				stdLog.Printf("Created profile: %s", p.Email)
			}
		} else {
			stdLog.Printf("Profile already exists: %s", p.Email)
		}
	}

	var alice models.Profile
	if err := models.DB.Where("email = ?", "alice@example.com").First(&alice).Error; err != nil {
		stdLog.Printf("Failed to load seed profile: %v", err)
	}

	// 添加赞助记录
	guestEmail := "carol@example.com"
	sponsorships := []models.Sponsorship{
		{
			SponsorID:            &alice.ID,
			BestieID:             maxID,
			StripeSubscriptionID: "sub_seed_max_alice",
			Amount:               models.NewMoneyFromDecimal(decimal.NewFromFloat(15.00)),
			Currency:             "usd",
			Frequency:            constants.FrequencyMonthly,
			Status:               constants.SponsorshipStatusActive,
			StripeMode:           constants.StripeModeTest,
		},
		{
			SponsorEmail:          &guestEmail,
			BestieID:              lunaID,
			StripePaymentIntentID: "pi_seed_luna_carol",
			Amount:                models.NewMoneyFromDecimal(decimal.NewFromFloat(50.00)),
			Currency:              "usd",
			Frequency:             constants.FrequencyOneTime,
			Status:                constants.SponsorshipStatusCanceled,
			StripeMode:            constants.StripeModeTest,
		},
	}

	for _, s := range sponsorships {
		if s.BestieID == 0 {
			stdLog.Printf("Skip sponsorship %s%s: bestie_id missing", s.StripeSubscriptionID, s.StripePaymentIntentID)
			continue
		}
		var existing models.Sponsorship
		err := models.DB.
			Where("stripe_subscription_id = ? AND stripe_payment_intent_id = ?", s.StripeSubscriptionID, s.StripePaymentIntentID).
			First(&existing).Error
		if err != nil {
			if err := models.DB.Create(&s).Error; err != nil {
				stdLog.Printf("Failed to create sponsorship for bestie %d: %v", s.BestieID, err)
			} else {
				stdLog.Printf("Created sponsorship for bestie %d", s.BestieID)
			}
		} else {
			stdLog.Printf("Sponsorship already exists for bestie %d", s.BestieID)
		}
	}

	// 添加捐赠记录
	donations := []models.Donation{
		{
			DonorID:               &alice.ID,
			Amount:                models.NewMoneyFromDecimal(decimal.NewFromFloat(29.99)),
			Currency:              "usd",
			Frequency:             constants.FrequencyOneTime,
			Status:                constants.DonationStatusCompleted,
			StripeCustomerID:      "cus_seed_alice",
			StripePaymentIntentID: "pi_seed_general_alice",
			StripeChargeID:        "ch_seed_general_alice",
			StripeMode:            constants.StripeModeTest,
			Notes:                 "seed fixture",
		},
		{
			DonorEmail:            &guestEmail,
			Amount:                models.NewMoneyFromDecimal(decimal.NewFromFloat(10.00)),
			Currency:              "usd",
			Frequency:             constants.FrequencyOneTime,
			Status:                constants.DonationStatusCompleted,
			StripePaymentIntentID: "pi_seed_general_carol",
			StripeChargeID:        "ch_seed_general_carol",
			StripeMode:            constants.StripeModeTest,
			Notes:                 "seed fixture",
		},
	}

	for _, d := range donations {
		var existing models.Donation
		err := models.DB.
			Where("stripe_charge_id = ? AND stripe_mode = ?", d.StripeChargeID, d.StripeMode).
			First(&existing).Error
		if err != nil {
			if err := models.DB.Create(&d).Error; err != nil {
				stdLog.Printf("Failed to create donation %s: %v", d.StripeChargeID, err)
			} else {
				stdLog.Printf("Created donation: %s", d.StripeChargeID)
			}
		} else {
			stdLog.Printf("Donation already exists: %s", d.StripeChargeID)
		}
	}

	// 为捐赠补齐收据（编号格式与补录路径一致）
	receiptPlans := []struct {
		ChargeID   string
		ReceiptNo  string
		DonorEmail string
		Amount     decimal.Decimal
	}{
		{ChargeID: "ch_seed_general_alice", ReceiptNo: "2025-900001", DonorEmail: "alice@example.com", Amount: decimal.NewFromFloat(29.99)},
		{ChargeID: "ch_seed_general_carol", ReceiptNo: "2025-900002", DonorEmail: guestEmail, Amount: decimal.NewFromFloat(10.00)},
	}

	for _, plan := range receiptPlans {
		var donation models.Donation
		if err := models.DB.Where("stripe_charge_id = ?", plan.ChargeID).First(&donation).Error; err != nil {
			stdLog.Printf("Skip receipt for %s: donation not found", plan.ChargeID)
			continue
		}
		var existing models.Receipt
		if err := models.DB.Where("transaction_id = ?", plan.ChargeID).First(&existing).Error; err != nil {
			receipt := models.Receipt{
				ReceiptNo:     plan.ReceiptNo,
				TransactionID: plan.ChargeID,
				DonationID:    donation.ID,
				Amount:        models.NewMoneyFromDecimal(plan.Amount),
				Currency:      "usd",
				DonorEmail:    plan.DonorEmail,
				OrgName:       cfg.Org.Name,
				OrgEIN:        cfg.Org.EIN,
				OrgAddress:    cfg.Org.Address,
				TaxYear:       2025,
				StripeMode:    constants.StripeModeTest,
			}
			if err := models.DB.Create(&receipt).Error; err != nil {
				stdLog.Printf("Failed to create receipt %s: %v", plan.ReceiptNo, err)
			} else {
				stdLog.Printf("Created receipt: %s", plan.ReceiptNo)
			}
		} else {
			stdLog.Printf("Receipt already exists: %s", plan.ChargeID)
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Besties (2 active, 1 retired)")
	fmt.Println("- 2 Profiles (password: password123)")
	fmt.Println("- 2 Sponsorships (1 monthly, 1 one-time)")
	fmt.Println("- 2 Donations with receipts")
}
