package models

import (
	"time"

	"gorm.io/gorm"
)

// Sponsorship 赞助记录表
// sponsor_id 与 sponsor_email 必须恰好有一个非空（数据库 check 约束）
type Sponsorship struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                                                        // 主键
	SponsorID             *uint          `gorm:"index;check:chk_sponsorship_identity,(sponsor_id IS NULL) <> (sponsor_email IS NULL)" json:"sponsor_id"` // 赞助人用户 ID
	SponsorEmail          *string        `gorm:"index" json:"sponsor_email"`                                                                  // 赞助人邮箱（无账号时使用）
	BestieID              uint           `gorm:"index;not null" json:"bestie_id"`                                                             // 受助对象 ID
	Bestie                *Bestie        `gorm:"foreignKey:BestieID" json:"bestie,omitempty"`                                                 // 受助对象
	StripeSubscriptionID  string         `gorm:"index" json:"stripe_subscription_id"`                                                         // Stripe 订阅 ID（月付）
	StripePaymentIntentID string         `gorm:"index" json:"stripe_payment_intent_id"`                                                       // Stripe 支付意图 ID（一次性）
	Amount                Money          `gorm:"type:decimal(20,2);not null" json:"amount"`                                                   // 金额（主单位）
	Currency              string         `gorm:"not null;default:'usd'" json:"currency"`                                                      // 币种
	Frequency             string         `gorm:"not null" json:"frequency"`                                                                   // 频率（monthly/one-time）
	Status                string         `gorm:"index;not null" json:"status"`                                                                // 状态
	StripeMode            string         `gorm:"index;not null;default:'live'" json:"stripe_mode"`                                            // 模式（test/live）
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                                                     // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                                                     // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                                              // 软删除时间
}

// TableName 指定表名
func (Sponsorship) TableName() string {
	return "sponsorships"
}
