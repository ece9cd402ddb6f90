package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/payment/stripe"
	"github.com/bestie-next/internal/repository"
)

// DebugService 管理端审计快照服务
// 只呈现、不裁决：歧义与冲突数据原样暴露给排查人员
type DebugService struct {
	gateways        *GatewaySet
	profileRepo     repository.ProfileRepository
	sponsorshipRepo repository.SponsorshipRepository
	donationRepo    repository.DonationRepository
	receiptRepo     repository.ReceiptRepository
	bestieRepo      repository.BestieRepository
}

// NewDebugService 创建审计快照服务
func NewDebugService(
	gateways *GatewaySet,
	profileRepo repository.ProfileRepository,
	sponsorshipRepo repository.SponsorshipRepository,
	donationRepo repository.DonationRepository,
	receiptRepo repository.ReceiptRepository,
	bestieRepo repository.BestieRepository,
) *DebugService {
	return &DebugService{
		gateways:        gateways,
		profileRepo:     profileRepo,
		sponsorshipRepo: sponsorshipRepo,
		donationRepo:    donationRepo,
		receiptRepo:     receiptRepo,
		bestieRepo:      bestieRepo,
	}
}

// DebugRecord 带归类依据的提供方记录
type DebugRecord struct {
	Source          string                     `json:"source"` // charge / invoice / subscription / checkout_session
	ID              string                     `json:"id"`
	CustomerID      string                     `json:"customer_id"`
	Amount          models.Money               `json:"amount"`
	Currency        string                     `json:"currency"`
	Status          string                     `json:"status"`
	Created         time.Time                  `json:"created"`
	PaymentIntentID string                     `json:"payment_intent_id,omitempty"`
	SubscriptionID  string                     `json:"subscription_id,omitempty"`
	InvoiceID       string                     `json:"invoice_id,omitempty"`
	RawMetadata     map[string]stripe.Metadata `json:"raw_metadata"`
	MergedMetadata  stripe.Metadata            `json:"merged_metadata"`
	Decision        Decision                   `json:"decision"`
}

// DebugSnapshot 审计快照
type DebugSnapshot struct {
	Email        string               `json:"email"`
	StripeMode   string               `json:"stripe_mode"`
	Customers    []stripe.Customer    `json:"customers"`
	Records      []DebugRecord        `json:"records"`
	Profile      *models.Profile      `json:"profile,omitempty"`
	Sponsorships []models.Sponsorship `json:"sponsorships"`
	Donations    []models.Donation    `json:"donations"`
	Receipts     []models.Receipt     `json:"receipts"`
	Clusters     [][]string           `json:"clusters"`
}

// BuildSnapshot 构建审计快照
// 遍历提供方所有匹配该邮箱的客户（同一人可能被建了多个客户记录）
func (s *DebugService) BuildSnapshot(ctx context.Context, email, mode string, limit int) (*DebugSnapshot, error) {
	gateway, err := s.gateways.Gateway(mode)
	if err != nil {
		return nil, err
	}

	customers, err := gateway.ListCustomersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var allCharges []stripe.Charge
	var allInvoices []stripe.Invoice
	var allSubscriptions []stripe.Subscription
	var allSessions []stripe.CheckoutSession
	for _, customer := range customers {
		charges, err := gateway.ListCharges(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		invoices, err := gateway.ListInvoices(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		subscriptions, err := gateway.ListSubscriptions(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		sessions, err := gateway.ListCheckoutSessions(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		allCharges = append(allCharges, charges...)
		allInvoices = append(allInvoices, invoices...)
		allSubscriptions = append(allSubscriptions, subscriptions...)
		allSessions = append(allSessions, sessions...)
	}

	index := BuildLinkIndex(allCharges, allInvoices, allSessions)

	refs := make([]string, 0, len(allCharges)+len(allSubscriptions))
	for _, charge := range allCharges {
		if charge.PaymentIntentID != "" {
			refs = append(refs, charge.PaymentIntentID)
		}
	}
	for _, subscription := range allSubscriptions {
		refs = append(refs, subscription.ID)
	}
	sponsorshipsByRef, err := s.sponsorshipRepo.ListByProviderRefs(mode, refs)
	if err != nil {
		return nil, err
	}
	names, err := resolveBestieNames(s.bestieRepo, collectBeneficiaryIDs(allCharges, allInvoices, allSubscriptions, allSessions))
	if err != nil {
		return nil, err
	}
	classifier := NewClassifier(index, sponsorshipsByRef, names)

	subscriptionsByID := make(map[string]*stripe.Subscription, len(allSubscriptions))
	for i := range allSubscriptions {
		subscriptionsByID[allSubscriptions[i].ID] = &allSubscriptions[i]
	}

	records := s.buildRecords(classifier, subscriptionsByID, allCharges, allInvoices, allSubscriptions, allSessions)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Created.After(records[j].Created)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	snapshot := &DebugSnapshot{
		Email:      email,
		StripeMode: mode,
		Customers:  customers,
		Records:    records,
	}
	if err := s.attachLocalRows(snapshot, email, mode); err != nil {
		return nil, err
	}
	snapshot.Clusters = buildClusters(snapshot)
	return snapshot, nil
}

func (s *DebugService) buildRecords(
	classifier *Classifier,
	subscriptionsByID map[string]*stripe.Subscription,
	charges []stripe.Charge,
	invoices []stripe.Invoice,
	subscriptions []stripe.Subscription,
	sessions []stripe.CheckoutSession,
) []DebugRecord {
	records := make([]DebugRecord, 0, len(charges)+len(invoices)+len(subscriptions)+len(sessions))

	for _, charge := range charges {
		record := PaymentRecord{
			Kind:            recordKindCharge,
			ID:              charge.ID,
			PaymentIntentID: charge.PaymentIntentID,
			Metadata:        charge.Metadata,
		}
		records = append(records, DebugRecord{
			Source:          "charge",
			ID:              charge.ID,
			CustomerID:      charge.CustomerID,
			Amount:          models.NewMoneyFromMinorUnits(charge.Amount),
			Currency:        charge.Currency,
			Status:          charge.Status,
			Created:         time.Unix(charge.Created, 0).UTC(),
			PaymentIntentID: charge.PaymentIntentID,
			InvoiceID:       charge.InvoiceID,
			RawMetadata:     rawMetadataLayers(record, classifier),
			MergedMetadata:  classifier.MergedMetadata(record),
			Decision:        classifier.Classify(record),
		})
	}

	for _, invoice := range invoices {
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
		records = append(records, DebugRecord{
			Source:          "invoice",
			ID:              invoice.ID,
			CustomerID:      invoice.CustomerID,
			Amount:          models.NewMoneyFromMinorUnits(invoice.AmountPaid),
			Currency:        invoice.Currency,
			Status:          invoice.Status,
			Created:         time.Unix(invoice.Created, 0).UTC(),
			PaymentIntentID: invoice.PaymentIntentID,
			SubscriptionID:  invoice.SubscriptionID,
			RawMetadata:     rawMetadataLayers(record, classifier),
			MergedMetadata:  classifier.MergedMetadata(record),
			Decision:        classifier.Classify(record),
		})
	}

	for _, subscription := range subscriptions {
		record := PaymentRecord{
			Kind:           "subscription",
			ID:             subscription.ID,
			SubscriptionID: subscription.ID,
			Metadata:       subscription.Metadata,
		}
		records = append(records, DebugRecord{
			Source:         "subscription",
			ID:             subscription.ID,
			CustomerID:     subscription.CustomerID,
			Amount:         models.NewMoneyFromMinorUnits(subscription.Amount),
			Currency:       subscription.Currency,
			Status:         subscription.Status,
			Created:        time.Unix(subscription.Created, 0).UTC(),
			SubscriptionID: subscription.ID,
			RawMetadata:    rawMetadataLayers(record, classifier),
			MergedMetadata: classifier.MergedMetadata(record),
			Decision:       classifier.Classify(record),
		})
	}

	for _, session := range sessions {
		record := PaymentRecord{
			Kind:            "checkout_session",
			ID:              session.ID,
			PaymentIntentID: session.PaymentIntentID,
			SubscriptionID:  session.SubscriptionID,
			Metadata:        session.Metadata,
		}
		records = append(records, DebugRecord{
			Source:          "checkout_session",
			ID:              session.ID,
			CustomerID:      session.CustomerID,
			Amount:          models.NewMoneyFromMinorUnits(session.AmountTotal),
			Currency:        session.Currency,
			Status:          session.Mode,
			Created:         time.Unix(session.Created, 0).UTC(),
			PaymentIntentID: session.PaymentIntentID,
			SubscriptionID:  session.SubscriptionID,
			RawMetadata:     map[string]stripe.Metadata{"self": session.Metadata},
			MergedMetadata:  session.Metadata,
			Decision:        classifier.Classify(record),
		})
	}

	return records
}

// rawMetadataLayers 按来源拆出归类器可见的各层原始元数据
func rawMetadataLayers(record PaymentRecord, classifier *Classifier) map[string]stripe.Metadata {
	layers := map[string]stripe.Metadata{"self": record.Metadata}
	if len(record.SubscriptionMetadata) > 0 {
		layers["subscription"] = record.SubscriptionMetadata
	}
	if classifier != nil && classifier.index != nil {
		if sessionMeta := classifier.index.SessionMetadata(record.PaymentIntentID, record.SubscriptionID); len(sessionMeta) > 0 {
			layers["checkout_session"] = sessionMeta
		}
	}
	return layers
}

func (s *DebugService) attachLocalRows(snapshot *DebugSnapshot, email, mode string) error {
	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	snapshot.Profile = profile

	sponsorships, err := s.sponsorshipRepo.ListBySponsorEmail(email)
	if err != nil {
		return err
	}
	snapshot.Sponsorships = sponsorships

	donations, err := s.donationRepo.ListByDonorEmail(email)
	if err != nil {
		return err
	}
	snapshot.Donations = donations

	receipts, _, err := s.receiptRepo.List(repository.ReceiptListFilter{DonorEmail: email, StripeMode: mode})
	if err != nil {
		return err
	}
	snapshot.Receipts = receipts
	return nil
}

// buildClusters 按共享的支付意图 / 账单 / 订单号做并查集，输出连通分量
func buildClusters(snapshot *DebugSnapshot) [][]string {
	uf := newUnionFind()

	link := func(node, ref, refKind string) {
		if node == "" || ref == "" {
			return
		}
		uf.union(node, refKind+":"+ref)
	}

	for _, record := range snapshot.Records {
		node := record.Source + ":" + record.ID
		uf.add(node)
		link(node, record.PaymentIntentID, "pi")
		link(node, record.SubscriptionID, "sub")
		link(node, record.InvoiceID, "inv")
		if record.Source == "invoice" {
			link(node, record.ID, "inv")
		}
		link(node, OrderID(record.MergedMetadata), "ord")
	}
	for _, sponsorship := range snapshot.Sponsorships {
		node := fmt.Sprintf("sponsorship:%d", sponsorship.ID)
		uf.add(node)
		link(node, sponsorship.StripePaymentIntentID, "pi")
		link(node, sponsorship.StripeSubscriptionID, "sub")
	}
	for _, donation := range snapshot.Donations {
		node := fmt.Sprintf("donation:%d", donation.ID)
		uf.add(node)
		link(node, donation.StripePaymentIntentID, "pi")
		link(node, donation.StripeSubscriptionID, "sub")
	}
	for _, receipt := range snapshot.Receipts {
		node := fmt.Sprintf("receipt:%d", receipt.ID)
		uf.add(node)
		// 收据交易号是扣款或账单 ID，挂到对应引用节点上
		link(node, receipt.TransactionID, "txn")
		for _, record := range snapshot.Records {
			if record.ID == receipt.TransactionID {
				uf.union(node, record.Source+":"+record.ID)
			}
		}
	}

	components := make(map[string][]string)
	for _, node := range uf.nodes {
		if isRefNode(node) {
			continue
		}
		root := uf.find(node)
		components[root] = append(components[root], node)
	}

	clusters := make([][]string, 0, len(components))
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i][0] < clusters[j][0]
	})
	return clusters
}

// isRefNode 引用锚点节点（纯连接用途），不出现在输出里
func isRefNode(node string) bool {
	for _, prefix := range []string{"pi:", "sub:", "inv:", "ord:", "txn:"} {
		if len(node) > len(prefix) && node[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type unionFind struct {
	parent map[string]string
	nodes  []string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) add(node string) {
	if _, ok := u.parent[node]; ok {
		return
	}
	u.parent[node] = node
	u.nodes = append(u.nodes, node)
}

func (u *unionFind) find(node string) string {
	u.add(node)
	root := node
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[node] != root {
		u.parent[node], node = root, u.parent[node]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	rootA, rootB := u.find(a), u.find(b)
	if rootA != rootB {
		u.parent[rootB] = rootA
	}
}
