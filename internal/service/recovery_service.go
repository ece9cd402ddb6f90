package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/logger"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/payment/stripe"
	"github.com/bestie-next/internal/repository"
)

// 单项补录结果状态
const (
	RecoveryStatusRecovered = "recovered"
	RecoveryStatusSkipped   = "skipped"
	RecoveryStatusFailed    = "failed"
)

// RecoveryService 缺失捐赠补录服务
// 逐笔处理，单笔失败只记录在该项结果里，不中断批次
type RecoveryService struct {
	gateways       *GatewaySet
	profileRepo    repository.ProfileRepository
	donationRepo   repository.DonationRepository
	receiptService *ReceiptService
}

// NewRecoveryService 创建补录服务
func NewRecoveryService(gateways *GatewaySet, profileRepo repository.ProfileRepository, donationRepo repository.DonationRepository, receiptService *ReceiptService) *RecoveryService {
	return &RecoveryService{
		gateways:       gateways,
		profileRepo:    profileRepo,
		donationRepo:   donationRepo,
		receiptService: receiptService,
	}
}

// RecoveryItemResult 单笔补录结果
type RecoveryItemResult struct {
	ChargeID    string `json:"charge_id"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	DonationID  uint   `json:"donation_id,omitempty"`
	ReceiptNo   string `json:"receipt_no,omitempty"`
	ReceiptSent bool   `json:"receipt_sent"`
}

// RecoverySummary 批次统计
type RecoverySummary struct {
	Requested int `json:"requested"`
	Recovered int `json:"recovered"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// RecoveryReport 补录报告
type RecoveryReport struct {
	Summary    RecoverySummary      `json:"summary"`
	Results    []RecoveryItemResult `json:"results"`
	StripeMode string               `json:"stripe_mode"`
}

// Recover 按扣款 ID 列表逐笔补录
// 去重依据是 支付意图 ID + 模式，缺支付意图的扣款退回 扣款 ID + 模式；串行处理避免触发提供方限流
func (s *RecoveryService) Recover(ctx context.Context, mode string, chargeIDs []string) (*RecoveryReport, error) {
	normalized := NormalizeStripeMode(mode)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStripeMode, mode)
	}
	gateway, err := s.gateways.Gateway(normalized)
	if err != nil {
		return nil, err
	}

	report := &RecoveryReport{
		Results:    make([]RecoveryItemResult, 0, len(chargeIDs)),
		StripeMode: normalized,
	}
	for _, chargeID := range chargeIDs {
		chargeID = strings.TrimSpace(chargeID)
		if chargeID == "" {
			continue
		}
		report.Summary.Requested++

		result := s.recoverOne(ctx, gateway, normalized, chargeID)
		report.Results = append(report.Results, result)
		switch result.Status {
		case RecoveryStatusRecovered:
			report.Summary.Recovered++
		case RecoveryStatusSkipped:
			report.Summary.Skipped++
		default:
			report.Summary.Failed++
		}
		logger.Infow("recovery_item_done",
			"charge_id", chargeID,
			"mode", normalized,
			"status", result.Status,
			"reason", result.Reason,
		)
	}
	return report, nil
}

func (s *RecoveryService) recoverOne(ctx context.Context, gateway StripeGateway, mode, chargeID string) RecoveryItemResult {
	result := RecoveryItemResult{ChargeID: chargeID, Status: RecoveryStatusFailed}

	charge, err := gateway.GetCharge(ctx, chargeID)
	if err != nil {
		result.Reason = err.Error()
		return result
	}
	if charge.Status != constants.StripeChargeSucceeded {
		result.Status = RecoveryStatusSkipped
		result.Reason = fmt.Sprintf("charge status is %q, only succeeded charges are recoverable", charge.Status)
		return result
	}

	existing, err := s.findExistingDonation(charge, mode)
	if err != nil {
		result.Reason = err.Error()
		return result
	}
	if existing != nil {
		result.Status = RecoveryStatusSkipped
		result.Reason = "Donation already exists for this charge"
		result.DonationID = existing.ID
		return result
	}

	// 支付意图元数据带受助对象 ID 的扣款属于赞助子系统，拒绝按普通捐赠补录
	merged := charge.Metadata.Clone()
	if charge.PaymentIntentID != "" {
		intent, err := gateway.GetPaymentIntent(ctx, charge.PaymentIntentID)
		if err != nil {
			result.Reason = err.Error()
			return result
		}
		merged = MergeMetadata(charge.Metadata, intent.Metadata)
	}
	if bestieID := BeneficiaryID(merged); bestieID != "" {
		result.Status = RecoveryStatusSkipped
		result.Reason = fmt.Sprintf("charge is earmarked for beneficiary %s; it belongs to the sponsorship subsystem", bestieID)
		return result
	}

	donorEmail, donorName, err := s.resolveDonor(ctx, gateway, charge)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	donation, err := s.insertDonation(charge, mode, merged, donorEmail)
	if err != nil {
		result.Reason = err.Error()
		return result
	}
	result.DonationID = donation.ID

	receipt, sent, err := s.receiptService.Issue(IssueInput{
		Donation:      donation,
		TransactionID: charge.ID,
		PaidAt:        time.Unix(charge.Created, 0).UTC(),
		DonorName:     donorName,
		DonorEmail:    donorEmail,
		StripeMode:    mode,
	})
	if err != nil {
		// 捐赠行已落库；去重键会挡住重复补录，但缺失的收据需人工跟进
		result.Reason = fmt.Sprintf("donation recorded but receipt creation failed: %v", err)
		return result
	}

	result.Status = RecoveryStatusRecovered
	result.ReceiptNo = receipt.ReceiptNo
	result.ReceiptSent = sent
	return result
}

// findExistingDonation 查重：优先 支付意图+模式，无支付意图的老式扣款按 扣款 ID+模式
func (s *RecoveryService) findExistingDonation(charge *stripe.Charge, mode string) (*models.Donation, error) {
	if charge.PaymentIntentID != "" {
		return s.donationRepo.GetByPaymentIntentAndMode(charge.PaymentIntentID, mode)
	}
	return s.donationRepo.GetByChargeIDAndMode(charge.ID, mode)
}

func (s *RecoveryService) resolveDonor(ctx context.Context, gateway StripeGateway, charge *stripe.Charge) (string, string, error) {
	if charge.CustomerID == "" {
		return "", "", fmt.Errorf("charge %s has no customer; cannot attribute donor", charge.ID)
	}
	customer, err := gateway.GetCustomer(ctx, charge.CustomerID)
	if err != nil {
		return "", "", err
	}
	email := strings.ToLower(strings.TrimSpace(customer.Email))
	if email == "" {
		return "", "", fmt.Errorf("customer %s has no email; cannot attribute donor", charge.CustomerID)
	}
	return email, strings.TrimSpace(customer.Name), nil
}

// insertDonation 落库捐赠行，显式满足 donor_id 与 donor_email 二选一的约束
func (s *RecoveryService) insertDonation(charge *stripe.Charge, mode string, merged stripe.Metadata, donorEmail string) (*models.Donation, error) {
	donation := &models.Donation{
		Amount:                models.NewMoneyFromMinorUnits(charge.Amount),
		Currency:              charge.Currency,
		Frequency:             constants.FrequencyOneTime,
		Status:                constants.DonationStatusCompleted,
		StripeCustomerID:      charge.CustomerID,
		StripePaymentIntentID: charge.PaymentIntentID,
		StripeChargeID:        charge.ID,
		StripeMode:            mode,
		Notes:                 "recovered from provider charge via admin backfill",
		ProviderPayload:       metadataToJSON(merged),
	}

	profile, err := s.profileRepo.GetByEmail(donorEmail)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		donation.DonorID = &profile.ID
	} else {
		email := donorEmail
		donation.DonorEmail = &email
	}

	if err := s.donationRepo.Create(donation); err != nil {
		return nil, err
	}
	return donation, nil
}

func metadataToJSON(metadata stripe.Metadata) models.JSON {
	if len(metadata) == 0 {
		return nil
	}
	payload := make(models.JSON, len(metadata))
	for key, value := range metadata {
		payload[key] = value
	}
	return payload
}
