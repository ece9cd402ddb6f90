package service

import (
	"github.com/bestie-next/internal/payment/stripe"
)

// LinkIndex 单个客户（或共享邮箱的客户簇）的提供方记录关联索引
// 一次遍历各列表构建，供归类器做去重与元数据解析
type LinkIndex struct {
	// payment_intent → 扣款 ID 列表（一个支付意图在重试后可落多笔扣款）
	ChargesByPaymentIntent map[string][]string
	// 被账单覆盖的扣款 ID 集合，一次性扣款去重的唯一依据
	InvoiceBackedCharges map[string]struct{}
	// Checkout Session 元数据，按 payment_intent / subscription 双键记录
	SessionMetaByPaymentIntent map[string]stripe.Metadata
	SessionMetaBySubscription  map[string]stripe.Metadata
	// 账单 → 订阅
	SubscriptionByInvoice map[string]string
}

// BuildLinkIndex 构建关联索引
func BuildLinkIndex(charges []stripe.Charge, invoices []stripe.Invoice, sessions []stripe.CheckoutSession) *LinkIndex {
	index := &LinkIndex{
		ChargesByPaymentIntent:     make(map[string][]string),
		InvoiceBackedCharges:       make(map[string]struct{}),
		SessionMetaByPaymentIntent: make(map[string]stripe.Metadata),
		SessionMetaBySubscription:  make(map[string]stripe.Metadata),
		SubscriptionByInvoice:      make(map[string]string),
	}

	for _, charge := range charges {
		if charge.PaymentIntentID == "" {
			continue
		}
		index.ChargesByPaymentIntent[charge.PaymentIntentID] = append(index.ChargesByPaymentIntent[charge.PaymentIntentID], charge.ID)
	}

	for _, session := range sessions {
		if len(session.Metadata) == 0 {
			continue
		}
		if session.PaymentIntentID != "" {
			index.SessionMetaByPaymentIntent[session.PaymentIntentID] = session.Metadata
		}
		if session.SubscriptionID != "" {
			index.SessionMetaBySubscription[session.SubscriptionID] = session.Metadata
		}
	}

	for _, invoice := range invoices {
		if invoice.SubscriptionID != "" {
			index.SubscriptionByInvoice[invoice.ID] = invoice.SubscriptionID
		}
		if invoice.ChargeID != "" {
			index.InvoiceBackedCharges[invoice.ChargeID] = struct{}{}
		}
		if invoice.LatestChargeID != "" {
			index.InvoiceBackedCharges[invoice.LatestChargeID] = struct{}{}
		}
		if invoice.PaymentIntentID != "" {
			for _, chargeID := range index.ChargesByPaymentIntent[invoice.PaymentIntentID] {
				index.InvoiceBackedCharges[chargeID] = struct{}{}
			}
		}
	}

	return index
}

// IsInvoiceBacked 判断扣款是否已由账单覆盖
func (ix *LinkIndex) IsInvoiceBacked(chargeID string) bool {
	if ix == nil || chargeID == "" {
		return false
	}
	_, ok := ix.InvoiceBackedCharges[chargeID]
	return ok
}

// SessionMetadata 按支付意图或订阅引用解析 Checkout Session 元数据
// 支付意图引用优先
func (ix *LinkIndex) SessionMetadata(paymentIntentID, subscriptionID string) stripe.Metadata {
	if ix == nil {
		return nil
	}
	if paymentIntentID != "" {
		if meta, ok := ix.SessionMetaByPaymentIntent[paymentIntentID]; ok {
			return meta
		}
	}
	if subscriptionID != "" {
		if meta, ok := ix.SessionMetaBySubscription[subscriptionID]; ok {
			return meta
		}
	}
	return nil
}
