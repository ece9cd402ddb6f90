package stripe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Metadata 提供方元数据（string→string，未知键原样保留）
type Metadata map[string]string

// Get 读取元数据键（去除首尾空白）
func (m Metadata) Get(key string) string {
	if len(m) == 0 {
		return ""
	}
	return strings.TrimSpace(m[key])
}

// Clone 复制元数据
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	cloned := make(Metadata, len(m))
	for key, value := range m {
		cloned[key] = value
	}
	return cloned
}

// Customer Stripe 客户
type Customer struct {
	ID       string
	Email    string
	Name     string
	Created  int64
	LiveMode bool
	Metadata Metadata
}

// Charge Stripe 扣款
type Charge struct {
	ID              string
	Amount          int64
	Currency        string
	Created         int64
	Status          string
	Paid            bool
	CustomerID      string
	PaymentIntentID string
	InvoiceID       string
	ReceiptURL      string
	Description     string
	Metadata        Metadata
}

// Invoice Stripe 账单
type Invoice struct {
	ID               string
	AmountPaid       int64
	Currency         string
	Created          int64
	Status           string
	Paid             bool
	CustomerID       string
	SubscriptionID   string
	PaymentIntentID  string
	ChargeID         string
	LatestChargeID   string
	HostedInvoiceURL string
	Metadata         Metadata
}

// Subscription Stripe 订阅
type Subscription struct {
	ID                string
	Status            string
	CustomerID        string
	Created           int64
	CurrentPeriodEnd  int64
	CancelAtPeriodEnd bool
	Amount            int64
	Currency          string
	Interval          string
	Metadata          Metadata
}

// CheckoutSession Stripe Checkout Session
type CheckoutSession struct {
	ID              string
	Mode            string
	CustomerID      string
	PaymentIntentID string
	SubscriptionID  string
	AmountTotal     int64
	Currency        string
	Created         int64
	Metadata        Metadata
}

// PaymentIntent Stripe 支付意图
type PaymentIntent struct {
	ID         string
	Amount     int64
	Currency   string
	Created    int64
	Status     string
	CustomerID string
	Metadata   Metadata
}

// ReadID 归一化可能为裸 ID 或展开对象的字段，统一返回 ID 字符串
func ReadID(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]interface{}:
		return strings.TrimSpace(readString(typed, "id"))
	default:
		return ""
	}
}

func parseCustomer(raw map[string]interface{}) Customer {
	return Customer{
		ID:       readString(raw, "id"),
		Email:    readString(raw, "email"),
		Name:     readString(raw, "name"),
		Created:  readInt64(raw, "created"),
		LiveMode: readBool(raw, "livemode"),
		Metadata: readMetadata(raw, "metadata"),
	}
}

func parseCharge(raw map[string]interface{}) Charge {
	return Charge{
		ID:              readString(raw, "id"),
		Amount:          readInt64(raw, "amount"),
		Currency:        strings.ToLower(readString(raw, "currency")),
		Created:         readInt64(raw, "created"),
		Status:          readString(raw, "status"),
		Paid:            readBool(raw, "paid"),
		CustomerID:      ReadID(raw, "customer"),
		PaymentIntentID: ReadID(raw, "payment_intent"),
		InvoiceID:       ReadID(raw, "invoice"),
		ReceiptURL:      readString(raw, "receipt_url"),
		Description:     readString(raw, "description"),
		Metadata:        readMetadata(raw, "metadata"),
	}
}

func parseInvoice(raw map[string]interface{}) Invoice {
	return Invoice{
		ID:               readString(raw, "id"),
		AmountPaid:       readInt64(raw, "amount_paid"),
		Currency:         strings.ToLower(readString(raw, "currency")),
		Created:          readInt64(raw, "created"),
		Status:           readString(raw, "status"),
		Paid:             readBool(raw, "paid"),
		CustomerID:       ReadID(raw, "customer"),
		SubscriptionID:   ReadID(raw, "subscription"),
		PaymentIntentID:  ReadID(raw, "payment_intent"),
		ChargeID:         ReadID(raw, "charge"),
		LatestChargeID:   ReadID(raw, "latest_charge"),
		HostedInvoiceURL: readString(raw, "hosted_invoice_url"),
		Metadata:         readMetadata(raw, "metadata"),
	}
}

func parseSubscription(raw map[string]interface{}) Subscription {
	subscription := Subscription{
		ID:                readString(raw, "id"),
		Status:            readString(raw, "status"),
		CustomerID:        ReadID(raw, "customer"),
		Created:           readInt64(raw, "created"),
		CurrentPeriodEnd:  readInt64(raw, "current_period_end"),
		CancelAtPeriodEnd: readBool(raw, "cancel_at_period_end"),
		Metadata:          readMetadata(raw, "metadata"),
	}
	// 金额优先取 plan，其次取 items.data[0].price
	if plan := readMap(raw, "plan"); plan != nil {
		subscription.Amount = readInt64(plan, "amount")
		subscription.Currency = strings.ToLower(readString(plan, "currency"))
		subscription.Interval = readString(plan, "interval")
	}
	if subscription.Amount == 0 {
		if items := readMap(raw, "items"); items != nil {
			if data, ok := items["data"].([]interface{}); ok && len(data) > 0 {
				if first, ok := data[0].(map[string]interface{}); ok {
					if price := readMap(first, "price"); price != nil {
						subscription.Amount = readInt64(price, "unit_amount")
						subscription.Currency = strings.ToLower(readString(price, "currency"))
						if recurring := readMap(price, "recurring"); recurring != nil {
							subscription.Interval = readString(recurring, "interval")
						}
					}
				}
			}
		}
	}
	return subscription
}

func parseCheckoutSession(raw map[string]interface{}) CheckoutSession {
	return CheckoutSession{
		ID:              readString(raw, "id"),
		Mode:            readString(raw, "mode"),
		CustomerID:      ReadID(raw, "customer"),
		PaymentIntentID: ReadID(raw, "payment_intent"),
		SubscriptionID:  ReadID(raw, "subscription"),
		AmountTotal:     readInt64(raw, "amount_total"),
		Currency:        strings.ToLower(readString(raw, "currency")),
		Created:         readInt64(raw, "created"),
		Metadata:        readMetadata(raw, "metadata"),
	}
}

func parsePaymentIntent(raw map[string]interface{}) PaymentIntent {
	return PaymentIntent{
		ID:         readString(raw, "id"),
		Amount:     readInt64(raw, "amount"),
		Currency:   strings.ToLower(readString(raw, "currency")),
		Created:    readInt64(raw, "created"),
		Status:     readString(raw, "status"),
		CustomerID: ReadID(raw, "customer"),
		Metadata:   readMetadata(raw, "metadata"),
	}
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || key == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	default:
		return ""
	}
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || key == "" {
		return 0
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func readBool(raw map[string]interface{}, key string) bool {
	if raw == nil || key == "" {
		return false
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return false
	}
	typed, ok := value.(bool)
	if !ok {
		return false
	}
	return typed
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil || key == "" {
		return nil
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	mapped, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return mapped
}

func readMetadata(raw map[string]interface{}, key string) Metadata {
	mapped := readMap(raw, key)
	if mapped == nil {
		return Metadata{}
	}
	metadata := make(Metadata, len(mapped))
	for metaKey, metaValue := range mapped {
		switch typed := metaValue.(type) {
		case string:
			metadata[metaKey] = typed
		case json.Number:
			metadata[metaKey] = typed.String()
		case float64:
			metadata[metaKey] = strconv.FormatInt(int64(typed), 10)
		case bool:
			metadata[metaKey] = strconv.FormatBool(typed)
		}
	}
	return metadata
}
