package repository

import "time"

// ReceiptListFilter 查询收据列表的过滤条件
type ReceiptListFilter struct {
	Page        int
	PageSize    int
	DonorEmail  string
	TaxYear     int
	StripeMode  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DonationListFilter 查询捐赠列表的过滤条件
type DonationListFilter struct {
	Page        int
	PageSize    int
	DonorID     uint
	DonorEmail  string
	Frequency   string
	Status      string
	StripeMode  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BestieListFilter 查询受助对象列表的过滤条件
type BestieListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}
