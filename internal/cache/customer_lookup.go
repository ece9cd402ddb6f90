package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const customerLookupTTL = 15 * time.Minute

// CustomerLookup 按邮箱查询 Stripe 客户的缓存条目
// 邮箱做哈希后入键，避免在 Redis 键空间中出现明文邮箱
type CustomerLookup struct {
	Email       string   `json:"email"`
	Mode        string   `json:"mode"`
	CustomerIDs []string `json:"customer_ids"`
	CachedAt    int64    `json:"cached_at"`
}

func customerLookupKey(mode, email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("stripe:customers:%s:%s", mode, hex.EncodeToString(sum[:16]))
}

// GetCustomerLookup 获取客户查询缓存
func GetCustomerLookup(ctx context.Context, mode, email string) (*CustomerLookup, bool, error) {
	if strings.TrimSpace(email) == "" {
		return nil, false, nil
	}
	var entry CustomerLookup
	hit, err := GetJSON(ctx, customerLookupKey(mode, email), &entry)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &entry, true, nil
}

// SetCustomerLookup 写入客户查询缓存
func SetCustomerLookup(ctx context.Context, mode, email string, customerIDs []string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	entry := &CustomerLookup{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Mode:        mode,
		CustomerIDs: customerIDs,
		CachedAt:    time.Now().Unix(),
	}
	return SetJSON(ctx, customerLookupKey(mode, email), entry, customerLookupTTL)
}

// DelCustomerLookup 删除客户查询缓存
func DelCustomerLookup(ctx context.Context, mode, email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	return Del(ctx, customerLookupKey(mode, email))
}
