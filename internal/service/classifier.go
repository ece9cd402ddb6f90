package service

import (
	"fmt"

	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/payment/stripe"
)

// Decision 归类结果
type Decision struct {
	Include     bool   `json:"include"`
	Designation string `json:"designation"`
	Reason      string `json:"reason"`
}

// PaymentRecord 待归类的提供方记录（扣款或账单）及其上下文元数据
type PaymentRecord struct {
	Kind                 string // charge / invoice
	ID                   string
	PaymentIntentID      string
	SubscriptionID       string
	Metadata             stripe.Metadata
	SubscriptionMetadata stripe.Metadata
}

const (
	recordKindCharge  = "charge"
	recordKindInvoice = "invoice"
)

// Classifier 交易归类器
// 纯函数式：所有判定只依赖预构建的索引与本地赞助快照，不产生副作用
type Classifier struct {
	index             *LinkIndex
	sponsorshipsByRef map[string]*models.Sponsorship
	bestieNames       map[string]string
}

// NewClassifier 创建归类器
// sponsorships 为按提供方引用预查的本地赞助记录；bestieNames 为 external_id → 名称
func NewClassifier(index *LinkIndex, sponsorships []models.Sponsorship, bestieNames map[string]string) *Classifier {
	byRef := make(map[string]*models.Sponsorship)
	for i := range sponsorships {
		sponsorship := &sponsorships[i]
		if sponsorship.StripeSubscriptionID != "" {
			byRef[sponsorship.StripeSubscriptionID] = sponsorship
		}
		if sponsorship.StripePaymentIntentID != "" {
			byRef[sponsorship.StripePaymentIntentID] = sponsorship
		}
	}
	if bestieNames == nil {
		bestieNames = map[string]string{}
	}
	return &Classifier{
		index:             index,
		sponsorshipsByRef: byRef,
		bestieNames:       bestieNames,
	}
}

// MergedMetadata 按权威顺序合并记录的各层元数据
// 对象自身 → 订阅 → Checkout Session（最权威）
func (c *Classifier) MergedMetadata(record PaymentRecord) stripe.Metadata {
	var sessionMeta stripe.Metadata
	if c != nil && c.index != nil {
		sessionMeta = c.index.SessionMetadata(record.PaymentIntentID, record.SubscriptionID)
	}
	return MergeMetadata(record.Metadata, record.SubscriptionMetadata, sessionMeta)
}

// Classify 归类一条提供方记录，首个命中规则生效
func (c *Classifier) Classify(record PaymentRecord) Decision {
	merged := c.MergedMetadata(record)

	// 1. 已由账单覆盖的扣款不重复计入
	if record.Kind == recordKindCharge && c.index.IsInvoiceBacked(record.ID) {
		return Decision{
			Include: false,
			Reason:  "charge is invoice-backed; represented by its subscription invoice",
		}
	}

	// 2. 带商城订单号的是商品购买，不算捐赠
	if orderID := OrderID(merged); orderID != "" {
		return Decision{
			Include:     false,
			Designation: constants.DesignationMarketplaceSkipped,
			Reason:      fmt.Sprintf("metadata order_id=%s marks a marketplace purchase", orderID),
		}
	}

	// 3. 本地赞助记录优先于任何元数据推断
	if sponsorship := c.sponsorshipByRefs(record.SubscriptionID, record.PaymentIntentID); sponsorship != nil {
		designation := constants.DesignationSponsorship
		if sponsorship.Bestie != nil && sponsorship.Bestie.Name != "" {
			designation = fmt.Sprintf("%s: %s", constants.DesignationSponsorship, sponsorship.Bestie.Name)
		}
		return Decision{
			Include:     true,
			Designation: designation,
			Reason:      fmt.Sprintf("matched local sponsorship #%d by provider reference", sponsorship.ID),
		}
	}

	// 4. 显式标记的普通捐赠
	if IsGeneralDonation(merged) {
		return Decision{
			Include:     true,
			Designation: constants.DesignationGeneralSupport,
			Reason:      "metadata marks an explicit general donation",
		}
	}

	// 5. 元数据携带受助对象 ID
	if bestieID := BeneficiaryID(merged); bestieID != "" {
		designation := constants.DesignationSponsorship
		if name := c.bestieNames[bestieID]; name != "" {
			designation = fmt.Sprintf("%s: %s", constants.DesignationSponsorship, name)
		}
		return Decision{
			Include:     true,
			Designation: designation,
			Reason:      fmt.Sprintf("metadata beneficiary id=%s", bestieID),
		}
	}

	// 6. 默认计入普通捐赠（宁可多收录也不漏记）
	return Decision{
		Include:     true,
		Designation: constants.DesignationGeneralSupport,
		Reason:      "no metadata or local match; defaulting to general support",
	}
}

func (c *Classifier) sponsorshipByRefs(refs ...string) *models.Sponsorship {
	if c == nil || len(c.sponsorshipsByRef) == 0 {
		return nil
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if sponsorship, ok := c.sponsorshipsByRef[ref]; ok {
			return sponsorship
		}
	}
	return nil
}
