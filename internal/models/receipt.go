package models

import "time"

// Receipt 捐赠收据表（只增不改）
// transaction_id 唯一约束是补录路径唯一的防重入口
type Receipt struct {
	ID            uint      `gorm:"primarykey" json:"id"`                       // 主键
	ReceiptNo     string    `gorm:"uniqueIndex;not null" json:"receipt_no"`     // 收据编号（{年份}-{六位序号}）
	TransactionID string    `gorm:"uniqueIndex;not null" json:"transaction_id"` // 交易 ID（Stripe charge/invoice id，自然键）
	DonationID    uint      `gorm:"index;not null" json:"donation_id"`          // 关联捐赠记录 ID
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`  // 金额（主单位）
	Currency      string    `gorm:"not null;default:'usd'" json:"currency"`     // 币种
	DonorName     string    `json:"donor_name"`                                 // 捐赠人姓名快照
	DonorEmail    string    `gorm:"index" json:"donor_email"`                   // 捐赠人邮箱快照
	OrgName       string    `json:"org_name"`                                   // 组织名称快照
	OrgEIN        string    `json:"org_ein"`                                    // 组织税号快照
	OrgAddress    string    `json:"org_address"`                                // 组织地址快照
	TaxYear       int       `gorm:"index;not null" json:"tax_year"`             // 税务年度
	StripeMode    string    `gorm:"index;not null;default:'live'" json:"stripe_mode"` // 模式（test/live）
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                    // 创建时间
}

// TableName 指定表名
func (Receipt) TableName() string {
	return "receipts"
}
