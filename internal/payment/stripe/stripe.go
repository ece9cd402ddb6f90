package stripe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("stripe config invalid")
	ErrRequestFailed   = errors.New("stripe request failed")
	ErrResponseInvalid = errors.New("stripe response invalid")
	ErrNotFound        = errors.New("stripe object not found")
)

const (
	defaultAPIBaseURL = "https://api.stripe.com"
	defaultTimeout    = 12 * time.Second
	listPageLimit     = 100
	maxListPages      = 20
)

// Config Stripe 客户端配置（单一模式的凭证）
type Config struct {
	SecretKey  string
	APIBaseURL string
	Timeout    time.Duration
}

// Client Stripe REST 客户端
// 只读：列表与查询，不创建任何提供方对象
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建 Stripe 客户端
func NewClient(cfg Config) (*Client, error) {
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListCustomersByEmail 按邮箱列出客户（Stripe 可能为同一邮箱创建多个客户）
func (c *Client) ListCustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrConfigInvalid)
	}
	params := url.Values{}
	params.Set("email", email)
	items, err := c.listAll(ctx, "/v1/customers", params)
	if err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, parseCustomer(item))
	}
	return customers, nil
}

// ListCharges 列出客户的全部扣款
func (c *Client) ListCharges(ctx context.Context, customerID string) ([]Charge, error) {
	params, err := customerParams(customerID)
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, "/v1/charges", params)
	if err != nil {
		return nil, err
	}
	charges := make([]Charge, 0, len(items))
	for _, item := range items {
		charges = append(charges, parseCharge(item))
	}
	return charges, nil
}

// ListInvoices 列出客户的全部账单
func (c *Client) ListInvoices(ctx context.Context, customerID string) ([]Invoice, error) {
	params, err := customerParams(customerID)
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, "/v1/invoices", params)
	if err != nil {
		return nil, err
	}
	invoices := make([]Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, parseInvoice(item))
	}
	return invoices, nil
}

// ListSubscriptions 列出客户的全部订阅（含已取消）
func (c *Client) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	params, err := customerParams(customerID)
	if err != nil {
		return nil, err
	}
	params.Set("status", "all")
	items, err := c.listAll(ctx, "/v1/subscriptions", params)
	if err != nil {
		return nil, err
	}
	subscriptions := make([]Subscription, 0, len(items))
	for _, item := range items {
		subscriptions = append(subscriptions, parseSubscription(item))
	}
	return subscriptions, nil
}

// ListCheckoutSessions 列出客户的全部 Checkout Session
func (c *Client) ListCheckoutSessions(ctx context.Context, customerID string) ([]CheckoutSession, error) {
	params, err := customerParams(customerID)
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, "/v1/checkout/sessions", params)
	if err != nil {
		return nil, err
	}
	sessions := make([]CheckoutSession, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, parseCheckoutSession(item))
	}
	return sessions, nil
}

// GetCustomer 按 ID 查询客户
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	raw, err := c.getObject(ctx, "/v1/customers", customerID)
	if err != nil {
		return nil, err
	}
	customer := parseCustomer(raw)
	return &customer, nil
}

// GetCharge 按 ID 查询扣款
func (c *Client) GetCharge(ctx context.Context, chargeID string) (*Charge, error) {
	raw, err := c.getObject(ctx, "/v1/charges", chargeID)
	if err != nil {
		return nil, err
	}
	charge := parseCharge(raw)
	return &charge, nil
}

// GetPaymentIntent 按 ID 查询支付意图
func (c *Client) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	raw, err := c.getObject(ctx, "/v1/payment_intents", paymentIntentID)
	if err != nil {
		return nil, err
	}
	intent := parsePaymentIntent(raw)
	return &intent, nil
}

func customerParams(customerID string) (url.Values, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrConfigInvalid)
	}
	params := url.Values{}
	params.Set("customer", customerID)
	return params, nil
}

func (c *Client) getObject(ctx context.Context, basePath, id string) (map[string]interface{}, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: object id is required", ErrConfigInvalid)
	}
	path := basePath + "/" + url.PathEscape(id)
	respBody, statusCode, err := c.doRequest(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if statusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: get %s status %d", ErrResponseInvalid, basePath, statusCode)
	}
	return decodeRawMap(respBody)
}

// listAll 翻页拉取整个列表（starting_after 游标）
func (c *Client) listAll(ctx context.Context, path string, params url.Values) ([]map[string]interface{}, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("limit", fmt.Sprintf("%d", listPageLimit))

	items := make([]map[string]interface{}, 0)
	startingAfter := ""
	for page := 0; page < maxListPages; page++ {
		pageParams := url.Values{}
		for key, values := range params {
			pageParams[key] = values
		}
		if startingAfter != "" {
			pageParams.Set("starting_after", startingAfter)
		}
		respBody, statusCode, err := c.doRequest(ctx, path, pageParams)
		if err != nil {
			return nil, err
		}
		if statusCode < 200 || statusCode >= 300 {
			return nil, fmt.Errorf("%w: list %s status %d", ErrResponseInvalid, path, statusCode)
		}
		raw, err := decodeRawMap(respBody)
		if err != nil {
			return nil, err
		}
		data, ok := raw["data"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: list %s missing data array", ErrResponseInvalid, path)
		}
		lastID := ""
		for _, entry := range data {
			item, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			items = append(items, item)
			lastID = readString(item, "id")
		}
		if !readBool(raw, "has_more") || lastID == "" {
			return items, nil
		}
		startingAfter = lastID
	}
	return items, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.cfg.APIBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}
