package repository

import (
	"errors"
	"strings"

	"github.com/bestie-next/internal/models"

	"gorm.io/gorm"
)

// ReceiptRepository 捐赠收据数据访问接口
type ReceiptRepository interface {
	GetByID(id uint) (*models.Receipt, error)
	GetByTransactionID(transactionID string) (*models.Receipt, error)
	CountByTaxYear(year int) (int64, error)
	List(filter ReceiptListFilter) ([]models.Receipt, int64, error)
	Create(receipt *models.Receipt) error
}

// GormReceiptRepository GORM 实现
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建收据仓库
func NewReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// GetByID 根据 ID 获取收据
func (r *GormReceiptRepository) GetByID(id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := r.db.First(&receipt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

// GetByTransactionID 根据交易号获取收据
func (r *GormReceiptRepository) GetByTransactionID(transactionID string) (*models.Receipt, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, nil
	}
	var receipt models.Receipt
	result := r.db.Where("transaction_id = ?", transactionID).Limit(1).Find(&receipt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &receipt, nil
}

// CountByTaxYear 统计指定纳税年度的收据数量，用于生成顺序收据编号
func (r *GormReceiptRepository) CountByTaxYear(year int) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Receipt{}).Where("tax_year = ?", year).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 获取收据列表
func (r *GormReceiptRepository) List(filter ReceiptListFilter) ([]models.Receipt, int64, error) {
	query := r.db.Model(&models.Receipt{})
	if email := strings.ToLower(strings.TrimSpace(filter.DonorEmail)); email != "" {
		query = query.Where("lower(donor_email) = ?", email)
	}
	if filter.TaxYear > 0 {
		query = query.Where("tax_year = ?", filter.TaxYear)
	}
	if filter.StripeMode != "" {
		query = query.Where("stripe_mode = ?", filter.StripeMode)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var receipts []models.Receipt
	if err := query.Order("id desc").Find(&receipts).Error; err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// Create 创建收据
func (r *GormReceiptRepository) Create(receipt *models.Receipt) error {
	return r.db.Create(receipt).Error
}
