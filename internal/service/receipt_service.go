package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bestie-next/internal/config"
	"github.com/bestie-next/internal/logger"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/queue"
	"github.com/bestie-next/internal/repository"
)

// ReceiptEmailSender 收据邮件发送接口
type ReceiptEmailSender interface {
	SendReceiptEmail(toEmail string, input ReceiptEmailInput) error
}

// ReceiptService 捐赠收据服务
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	queueClient *queue.Client
	emailSender ReceiptEmailSender
	orgCfg      config.OrgConfig
}

// NewReceiptService 创建收据服务
func NewReceiptService(receiptRepo repository.ReceiptRepository, queueClient *queue.Client, emailSender ReceiptEmailSender, orgCfg config.OrgConfig) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		queueClient: queueClient,
		emailSender: emailSender,
		orgCfg:      orgCfg,
	}
}

// IssueInput 开具收据的输入
type IssueInput struct {
	Donation      *models.Donation
	TransactionID string
	PaidAt        time.Time
	DonorName     string
	DonorEmail    string
	StripeMode    string
}

// Issue 开具收据并触发收据邮件
// 编号按纳税年度顺序生成；transaction_id 唯一约束兜底并发下的重复插入
// 返回收据与邮件是否已派发
func (s *ReceiptService) Issue(input IssueInput) (*models.Receipt, bool, error) {
	if input.Donation == nil {
		return nil, false, fmt.Errorf("donation is required")
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return nil, false, fmt.Errorf("transaction id is required")
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	year := paidAt.UTC().Year()

	count, err := s.receiptRepo.CountByTaxYear(year)
	if err != nil {
		return nil, false, err
	}

	receipt := &models.Receipt{
		ReceiptNo:     fmt.Sprintf("%d-%06d", year, count+1),
		TransactionID: transactionID,
		DonationID:    input.Donation.ID,
		Amount:        input.Donation.Amount,
		Currency:      input.Donation.Currency,
		DonorName:     strings.TrimSpace(input.DonorName),
		DonorEmail:    strings.ToLower(strings.TrimSpace(input.DonorEmail)),
		OrgName:       s.orgCfg.Name,
		OrgEIN:        s.orgCfg.EIN,
		OrgAddress:    s.orgCfg.Address,
		TaxYear:       year,
		StripeMode:    input.StripeMode,
	}
	if err := s.receiptRepo.Create(receipt); err != nil {
		return nil, false, err
	}

	sent := s.dispatchReceiptEmail(receipt)
	return receipt, sent, nil
}

// dispatchReceiptEmail 优先入队异步发送，队列未启用时同步发送
func (s *ReceiptService) dispatchReceiptEmail(receipt *models.Receipt) bool {
	if receipt == nil || receipt.DonorEmail == "" {
		return false
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueReceiptEmail(queue.ReceiptEmailPayload{ReceiptID: receipt.ID}); err != nil {
			logger.Warnw("receipt_email_enqueue_failed", "receipt_no", receipt.ReceiptNo, "error", err)
			return false
		}
		return true
	}
	if s.emailSender == nil {
		return false
	}
	if err := s.emailSender.SendReceiptEmail(receipt.DonorEmail, BuildReceiptEmailInput(receipt)); err != nil {
		logger.Warnw("receipt_email_send_failed", "receipt_no", receipt.ReceiptNo, "error", err)
		return false
	}
	return true
}

// BuildReceiptEmailInput 从收据行构建邮件输入
func BuildReceiptEmailInput(receipt *models.Receipt) ReceiptEmailInput {
	if receipt == nil {
		return ReceiptEmailInput{}
	}
	return ReceiptEmailInput{
		DonorName:  receipt.DonorName,
		ReceiptNo:  receipt.ReceiptNo,
		Amount:     receipt.Amount,
		Currency:   receipt.Currency,
		TaxYear:    receipt.TaxYear,
		OrgName:    receipt.OrgName,
		OrgEIN:     receipt.OrgEIN,
		OrgAddress: receipt.OrgAddress,
	}
}
