package service

import (
	"context"
	"sort"
	"time"

	"github.com/bestie-next/internal/cache"
	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/logger"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/payment/stripe"
	"github.com/bestie-next/internal/repository"
)

// HistoryService 捐赠历史服务
type HistoryService struct {
	gateways        *GatewaySet
	sponsorshipRepo repository.SponsorshipRepository
	bestieRepo      repository.BestieRepository
}

// NewHistoryService 创建捐赠历史服务
func NewHistoryService(gateways *GatewaySet, sponsorshipRepo repository.SponsorshipRepository, bestieRepo repository.BestieRepository) *HistoryService {
	return &HistoryService{
		gateways:        gateways,
		sponsorshipRepo: sponsorshipRepo,
		bestieRepo:      bestieRepo,
	}
}

// DonationHistoryEntry 已完成交易条目
type DonationHistoryEntry struct {
	ID          string       `json:"id"`
	Amount      models.Money `json:"amount"`
	Currency    string       `json:"currency"`
	Frequency   string       `json:"frequency"`
	Designation string       `json:"designation"`
	Timestamp   time.Time    `json:"timestamp"`
	ReceiptURL  string       `json:"receipt_url,omitempty"`
}

// ActiveSubscriptionSummary 进行中的订阅摘要
type ActiveSubscriptionSummary struct {
	ID                string       `json:"id"`
	Amount            models.Money `json:"amount"`
	Currency          string       `json:"currency"`
	Designation       string       `json:"designation"`
	RenewalDate       time.Time    `json:"renewal_date"`
	CancelAtPeriodEnd bool         `json:"cancel_at_period_end"`
}

// DonationHistory 捐赠历史结果
type DonationHistory struct {
	Donations     []DonationHistoryEntry      `json:"donations"`
	Subscriptions []ActiveSubscriptionSummary `json:"subscriptions"`
	StripeMode    string                      `json:"stripe_mode"`
}

// GetHistory 构建捐赠人历史
// 未在提供方留下客户记录的邮箱返回空列表（正常状态，不是错误）
// 模式覆盖仅对特权调用方生效
func (s *HistoryService) GetHistory(ctx context.Context, email, requestedMode string, elevated bool) (*DonationHistory, error) {
	mode := s.gateways.ResolveStripeMode(requestedMode, elevated)
	gateway, err := s.gateways.Gateway(mode)
	if err != nil {
		return nil, err
	}

	result := &DonationHistory{
		Donations:     []DonationHistoryEntry{},
		Subscriptions: []ActiveSubscriptionSummary{},
		StripeMode:    mode,
	}

	customerID, err := s.resolveCustomerID(ctx, gateway, mode, email)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		return result, nil
	}

	charges, err := gateway.ListCharges(ctx, customerID)
	if err != nil {
		return nil, err
	}
	invoices, err := gateway.ListInvoices(ctx, customerID)
	if err != nil {
		return nil, err
	}
	subscriptions, err := gateway.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, err
	}
	sessions, err := gateway.ListCheckoutSessions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	index := BuildLinkIndex(charges, invoices, sessions)
	classifier, err := s.buildClassifier(index, mode, charges, invoices, subscriptions, sessions)
	if err != nil {
		return nil, err
	}

	subscriptionsByID := make(map[string]*stripe.Subscription, len(subscriptions))
	for i := range subscriptions {
		subscriptionsByID[subscriptions[i].ID] = &subscriptions[i]
	}

	// 订阅账单 → 月度条目
	for _, invoice := range invoices {
		if !invoice.Paid || invoice.SubscriptionID == "" {
			continue
		}
		record := PaymentRecord{
			Kind:            recordKindInvoice,
			ID:              invoice.ID,
			PaymentIntentID: invoice.PaymentIntentID,
			SubscriptionID:  invoice.SubscriptionID,
			Metadata:        invoice.Metadata,
		}
		if subscription := subscriptionsByID[invoice.SubscriptionID]; subscription != nil {
			record.SubscriptionMetadata = subscription.Metadata
		}
		decision := classifier.Classify(record)
		if !decision.Include {
			continue
		}
		result.Donations = append(result.Donations, DonationHistoryEntry{
			ID:          invoice.ID,
			Amount:      models.NewMoneyFromMinorUnits(invoice.AmountPaid),
			Currency:    invoice.Currency,
			Frequency:   constants.FrequencyMonthly,
			Designation: decision.Designation,
			Timestamp:   time.Unix(invoice.Created, 0).UTC(),
			ReceiptURL:  invoice.HostedInvoiceURL,
		})
	}

	// 非账单覆盖的成功扣款 → 一次性条目
	for _, charge := range charges {
		if charge.Status != constants.StripeChargeSucceeded {
			continue
		}
		decision := classifier.Classify(PaymentRecord{
			Kind:            recordKindCharge,
			ID:              charge.ID,
			PaymentIntentID: charge.PaymentIntentID,
			Metadata:        charge.Metadata,
		})
		if !decision.Include {
			continue
		}
		result.Donations = append(result.Donations, DonationHistoryEntry{
			ID:          charge.ID,
			Amount:      models.NewMoneyFromMinorUnits(charge.Amount),
			Currency:    charge.Currency,
			Frequency:   constants.FrequencyOneTime,
			Designation: decision.Designation,
			Timestamp:   time.Unix(charge.Created, 0).UTC(),
			ReceiptURL:  charge.ReceiptURL,
		})
	}

	sort.Slice(result.Donations, func(i, j int) bool {
		return result.Donations[i].Timestamp.After(result.Donations[j].Timestamp)
	})

	// 进行中订阅摘要
	for _, subscription := range subscriptions {
		if subscription.Status != constants.StripeSubscriptionActive && subscription.Status != constants.StripeSubscriptionTrialing {
			continue
		}
		decision := classifier.Classify(PaymentRecord{
			Kind:           "subscription",
			ID:             subscription.ID,
			SubscriptionID: subscription.ID,
			Metadata:       subscription.Metadata,
		})
		if !decision.Include {
			continue
		}
		result.Subscriptions = append(result.Subscriptions, ActiveSubscriptionSummary{
			ID:                subscription.ID,
			Amount:            models.NewMoneyFromMinorUnits(subscription.Amount),
			Currency:          subscription.Currency,
			Designation:       decision.Designation,
			RenewalDate:       time.Unix(subscription.CurrentPeriodEnd, 0).UTC(),
			CancelAtPeriodEnd: subscription.CancelAtPeriodEnd,
		})
	}

	return result, nil
}

// resolveCustomerID 按邮箱解析最新客户 ID，带短 TTL 缓存
func (s *HistoryService) resolveCustomerID(ctx context.Context, gateway StripeGateway, mode, email string) (string, error) {
	if lookup, hit, err := cache.GetCustomerLookup(ctx, mode, email); err == nil && hit {
		if len(lookup.CustomerIDs) == 0 {
			return "", nil
		}
		return lookup.CustomerIDs[0], nil
	} else if err != nil {
		logger.Warnw("history_customer_lookup_cache_failed", "error", err)
	}

	customers, err := gateway.ListCustomersByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	customerIDs := make([]string, 0, len(customers))
	for _, customer := range customers {
		customerIDs = append(customerIDs, customer.ID)
	}
	if err := cache.SetCustomerLookup(ctx, mode, email, customerIDs); err != nil {
		logger.Warnw("history_customer_lookup_cache_store_failed", "error", err)
	}
	if len(customerIDs) == 0 {
		return "", nil
	}
	return customerIDs[0], nil
}

// buildClassifier 预查本地赞助与受助对象名称并组装归类器
func (s *HistoryService) buildClassifier(index *LinkIndex, mode string, charges []stripe.Charge, invoices []stripe.Invoice, subscriptions []stripe.Subscription, sessions []stripe.CheckoutSession) (*Classifier, error) {
	refs := make([]string, 0, len(charges)+len(subscriptions))
	for _, charge := range charges {
		if charge.PaymentIntentID != "" {
			refs = append(refs, charge.PaymentIntentID)
		}
	}
	for _, subscription := range subscriptions {
		refs = append(refs, subscription.ID)
	}
	for _, invoice := range invoices {
		if invoice.SubscriptionID != "" {
			refs = append(refs, invoice.SubscriptionID)
		}
	}

	sponsorships, err := s.sponsorshipRepo.ListByProviderRefs(mode, refs)
	if err != nil {
		return nil, err
	}

	names, err := resolveBestieNames(s.bestieRepo, collectBeneficiaryIDs(charges, invoices, subscriptions, sessions))
	if err != nil {
		return nil, err
	}
	return NewClassifier(index, sponsorships, names), nil
}

// collectBeneficiaryIDs 汇总各层元数据中出现的受助对象 ID
func collectBeneficiaryIDs(charges []stripe.Charge, invoices []stripe.Invoice, subscriptions []stripe.Subscription, sessions []stripe.CheckoutSession) []string {
	seen := make(map[string]struct{})
	collect := func(metadata stripe.Metadata) {
		if id := BeneficiaryID(metadata); id != "" {
			seen[id] = struct{}{}
		}
	}
	for _, charge := range charges {
		collect(charge.Metadata)
	}
	for _, invoice := range invoices {
		collect(invoice.Metadata)
	}
	for _, subscription := range subscriptions {
		collect(subscription.Metadata)
	}
	for _, session := range sessions {
		collect(session.Metadata)
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}

// resolveBestieNames 按对外 ID 批量解析受助对象名称，查不到的跳过
func resolveBestieNames(bestieRepo repository.BestieRepository, externalIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(externalIDs))
	for _, externalID := range externalIDs {
		bestie, err := bestieRepo.GetByExternalID(externalID)
		if err != nil {
			return nil, err
		}
		if bestie != nil {
			names[externalID] = bestie.Name
		}
	}
	return names, nil
}
