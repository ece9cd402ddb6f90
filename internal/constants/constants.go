package constants

// Stripe 模式常量（沙箱/生产数据严格分区）
const (
	StripeModeTest = "test"
	StripeModeLive = "live"
)

// 捐赠频率常量
const (
	FrequencyOneTime = "one-time"
	FrequencyMonthly = "monthly"
)

// 捐赠状态常量
const (
	DonationStatusCompleted = "completed"
	DonationStatusPending   = "pending"
	DonationStatusRefunded  = "refunded"
)

// 赞助状态常量
const (
	SponsorshipStatusActive   = "active"
	SponsorshipStatusPaused   = "paused"
	SponsorshipStatusCanceled = "canceled"
)

// 交易归类标签常量
const (
	DesignationMarketplaceSkipped = "SKIPPED (Marketplace)"
	DesignationGeneralSupport     = "General Support"
	DesignationSponsorship        = "Sponsorship"
)

// Stripe 对象状态常量（仅列出归类逻辑依赖的值）
const (
	StripeChargeSucceeded      = "succeeded"
	StripeInvoicePaid          = "paid"
	StripeSubscriptionActive   = "active"
	StripeSubscriptionTrialing = "trialing"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 异步任务名称常量
const (
	TaskReceiptEmail = "email:donation_receipt"
	QueueDefault     = "default"
)

// 管理端内置角色常量
const (
	RoleAdmin = "admin"
	RoleOwner = "owner"
)
