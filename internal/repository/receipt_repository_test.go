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

func setupReceiptRepositoryTest(t *testing.T) (*GormReceiptRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Receipt{}); err != nil {
		t.Fatalf("migrate receipt models failed: %v", err)
	}
	return NewReceiptRepository(db), db
}

func newTestReceipt(no, txn string, year int) *models.Receipt {
	return &models.Receipt{
		ReceiptNo:     no,
		TransactionID: txn,
		DonationID:    1,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Currency:      "usd",
		DonorName:     "Test Donor",
		DonorEmail:    "donor@example.com",
		OrgName:       "Besties Org",
		OrgEIN:        "00-0000000",
		TaxYear:       year,
		StripeMode:    constants.StripeModeLive,
	}
}

func TestCountByTaxYearScopesToYear(t *testing.T) {
	repo, _ := setupReceiptRepositoryTest(t)

	if err := repo.Create(newTestReceipt("2025-000001", "ch_year_a", 2025)); err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}
	if err := repo.Create(newTestReceipt("2025-000002", "ch_year_b", 2025)); err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}
	if err := repo.Create(newTestReceipt("2024-000001", "ch_year_c", 2024)); err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	count, err := repo.CountByTaxYear(2025)
	if err != nil {
		t.Fatalf("count by tax year failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 receipts for 2025, got %d", count)
	}
}

func TestCreateRejectsDuplicateTransactionID(t *testing.T) {
	repo, _ := setupReceiptRepositoryTest(t)

	if err := repo.Create(newTestReceipt("2025-000001", "ch_duplicate", 2025)); err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}
	if err := repo.Create(newTestReceipt("2025-000002", "ch_duplicate", 2025)); err == nil {
		t.Fatal("expected unique constraint violation on transaction_id")
	}
}

func TestGetByTransactionID(t *testing.T) {
	repo, _ := setupReceiptRepositoryTest(t)

	if err := repo.Create(newTestReceipt("2025-000001", "ch_lookup", 2025)); err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	receipt, err := repo.GetByTransactionID("ch_lookup")
	if err != nil {
		t.Fatalf("get by transaction id failed: %v", err)
	}
	if receipt == nil {
		t.Fatal("expected receipt for ch_lookup")
	}
	if receipt.ReceiptNo != "2025-000001" {
		t.Fatalf("unexpected receipt no: %s", receipt.ReceiptNo)
	}

	missing, err := repo.GetByTransactionID("ch_missing")
	if err != nil {
		t.Fatalf("get by transaction id failed: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown transaction id")
	}
}

func TestReceiptListFiltersByDonorEmailAndYear(t *testing.T) {
	repo, _ := setupReceiptRepositoryTest(t)

	first := newTestReceipt("2025-000001", "ch_list_a", 2025)
	first.DonorEmail = "Alpha@Example.com"
	second := newTestReceipt("2025-000002", "ch_list_b", 2025)
	second.DonorEmail = "beta@example.com"
	third := newTestReceipt("2024-000001", "ch_list_c", 2024)
	third.DonorEmail = "alpha@example.com"
	for _, receipt := range []*models.Receipt{first, second, third} {
		if err := repo.Create(receipt); err != nil {
			t.Fatalf("create receipt %s failed: %v", receipt.TransactionID, err)
		}
	}

	receipts, total, err := repo.List(ReceiptListFilter{
		Page:       1,
		PageSize:   10,
		DonorEmail: "alpha@example.com",
		TaxYear:    2025,
	})
	if err != nil {
		t.Fatalf("list receipts failed: %v", err)
	}
	if total != 1 || len(receipts) != 1 {
		t.Fatalf("expected 1 receipt, got total=%d len=%d", total, len(receipts))
	}
	if receipts[0].TransactionID != "ch_list_a" {
		t.Fatalf("unexpected receipt: %s", receipts[0].TransactionID)
	}
}
