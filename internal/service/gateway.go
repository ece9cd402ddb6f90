package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bestie-next/internal/config"
	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/payment/stripe"
)

// StripeGateway 支付提供方查询接口（单一模式）
type StripeGateway interface {
	ListCustomersByEmail(ctx context.Context, email string) ([]stripe.Customer, error)
	ListCharges(ctx context.Context, customerID string) ([]stripe.Charge, error)
	ListInvoices(ctx context.Context, customerID string) ([]stripe.Invoice, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]stripe.Subscription, error)
	ListCheckoutSessions(ctx context.Context, customerID string) ([]stripe.CheckoutSession, error)
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)
	GetCharge(ctx context.Context, chargeID string) (*stripe.Charge, error)
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error)
}

// GatewaySet 按模式（test/live）持有 Stripe 网关
// 沙箱与生产凭证严格分离，调用方按请求解析出的模式取用
type GatewaySet struct {
	defaultMode string
	gateways    map[string]StripeGateway
}

// NewGatewaySet 按配置构建网关集合，仅注册配置了密钥的模式
func NewGatewaySet(cfg *config.StripeConfig) (*GatewaySet, error) {
	if cfg == nil {
		return nil, fmt.Errorf("stripe config is nil")
	}
	defaultMode := NormalizeStripeMode(cfg.DefaultMode)
	if defaultMode == "" {
		defaultMode = constants.StripeModeLive
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	gateways := make(map[string]StripeGateway)
	modes := map[string]config.StripeModeConfig{
		constants.StripeModeTest: cfg.Test,
		constants.StripeModeLive: cfg.Live,
	}
	for mode, modeCfg := range modes {
		if strings.TrimSpace(modeCfg.SecretKey) == "" {
			continue
		}
		client, err := stripe.NewClient(stripe.Config{
			SecretKey:  modeCfg.SecretKey,
			APIBaseURL: cfg.APIBaseURL,
			Timeout:    timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("build %s stripe client failed: %w", mode, err)
		}
		gateways[mode] = client
	}

	return &GatewaySet{
		defaultMode: defaultMode,
		gateways:    gateways,
	}, nil
}

// NewGatewaySetWithGateways 从现成网关构建集合（测试注入用）
func NewGatewaySetWithGateways(defaultMode string, gateways map[string]StripeGateway) *GatewaySet {
	normalized := NormalizeStripeMode(defaultMode)
	if normalized == "" {
		normalized = constants.StripeModeLive
	}
	return &GatewaySet{defaultMode: normalized, gateways: gateways}
}

// DefaultMode 平台默认模式
func (s *GatewaySet) DefaultMode() string {
	if s == nil || s.defaultMode == "" {
		return constants.StripeModeLive
	}
	return s.defaultMode
}

// Gateway 按模式取网关
func (s *GatewaySet) Gateway(mode string) (StripeGateway, error) {
	normalized := NormalizeStripeMode(mode)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStripeMode, mode)
	}
	if s == nil || s.gateways == nil {
		return nil, fmt.Errorf("%w: %s", ErrStripeModeNotConfigured, normalized)
	}
	gateway, ok := s.gateways[normalized]
	if !ok || gateway == nil {
		return nil, fmt.Errorf("%w: %s", ErrStripeModeNotConfigured, normalized)
	}
	return gateway, nil
}

// NormalizeStripeMode 归一化模式取值，非法返回空串
func NormalizeStripeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case constants.StripeModeTest:
		return constants.StripeModeTest
	case constants.StripeModeLive:
		return constants.StripeModeLive
	default:
		return ""
	}
}

// ResolveStripeMode 解析请求模式
// 仅特权调用方可覆盖平台默认模式；其余请求一律落回默认值
func (s *GatewaySet) ResolveStripeMode(requested string, elevated bool) string {
	if !elevated {
		return s.DefaultMode()
	}
	normalized := NormalizeStripeMode(requested)
	if normalized == "" {
		return s.DefaultMode()
	}
	return normalized
}
