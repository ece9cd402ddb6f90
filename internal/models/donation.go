package models

import (
	"time"

	"gorm.io/gorm"
)

// Donation 捐赠记录表
// donor_id 与 donor_email 必须恰好有一个非空（数据库 check 约束）
type Donation struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                                                // 主键
	DonorID               *uint          `gorm:"index;check:chk_donation_identity,(donor_id IS NULL) <> (donor_email IS NULL)" json:"donor_id"` // 捐赠人用户 ID
	DonorEmail            *string        `gorm:"index" json:"donor_email"`                                                            // 捐赠人邮箱（无账号时使用）
	Amount                Money          `gorm:"type:decimal(20,2);not null" json:"amount"`                                           // 金额（主单位）
	Currency              string         `gorm:"not null;default:'usd'" json:"currency"`                                              // 币种
	Frequency             string         `gorm:"not null" json:"frequency"`                                                           // 频率（monthly/one-time）
	Status                string         `gorm:"index;not null" json:"status"`                                                        // 状态
	StripeCustomerID      string         `gorm:"index" json:"stripe_customer_id"`                                                     // Stripe 客户 ID
	StripeSubscriptionID  string         `gorm:"index" json:"stripe_subscription_id"`                                                 // Stripe 订阅 ID
	StripePaymentIntentID string         `gorm:"index" json:"stripe_payment_intent_id"`                                               // Stripe 支付意图 ID
	StripeChargeID        string         `gorm:"index" json:"stripe_charge_id"`                                                       // Stripe 扣款 ID
	StripeMode            string         `gorm:"index;not null;default:'live'" json:"stripe_mode"`                                    // 模式（test/live）
	Notes                 string         `gorm:"type:text" json:"notes"`                                                              // 备注（补录来源等）
	ProviderPayload       JSON           `gorm:"type:json" json:"provider_payload"`                                                   // 合并后的提供方元数据快照
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                                             // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                                             // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                                      // 软删除时间
}

// TableName 指定表名
func (Donation) TableName() string {
	return "donations"
}
