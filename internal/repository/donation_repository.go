package repository

import (
	"errors"
	"strings"

	"github.com/bestie-next/internal/models"

	"gorm.io/gorm"
)

// DonationRepository 捐赠记录数据访问接口
type DonationRepository interface {
	GetByID(id uint) (*models.Donation, error)
	GetByPaymentIntentAndMode(paymentIntentID, mode string) (*models.Donation, error)
	GetByChargeIDAndMode(chargeID, mode string) (*models.Donation, error)
	ListByDonorEmail(email string) ([]models.Donation, error)
	List(filter DonationListFilter) ([]models.Donation, int64, error)
	Create(donation *models.Donation) error
	Update(donation *models.Donation) error
}

// GormDonationRepository GORM 实现
type GormDonationRepository struct {
	db *gorm.DB
}

// NewDonationRepository 创建捐赠记录仓库
func NewDonationRepository(db *gorm.DB) *GormDonationRepository {
	return &GormDonationRepository{db: db}
}

// GetByID 根据 ID 获取捐赠记录
func (r *GormDonationRepository) GetByID(id uint) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.First(&donation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

// GetByPaymentIntentAndMode 根据支付意向和环境获取捐赠记录，回填去重依赖该查询
func (r *GormDonationRepository) GetByPaymentIntentAndMode(paymentIntentID, mode string) (*models.Donation, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return nil, nil
	}
	var donation models.Donation
	result := r.db.Where("stripe_payment_intent_id = ? AND stripe_mode = ?", paymentIntentID, mode).
		Limit(1).Find(&donation)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &donation, nil
}

// GetByChargeIDAndMode 根据扣款 ID 和环境获取捐赠记录
// 无支付意向的老式扣款去重走这条路径
func (r *GormDonationRepository) GetByChargeIDAndMode(chargeID, mode string) (*models.Donation, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, nil
	}
	var donation models.Donation
	result := r.db.Where("stripe_charge_id = ? AND stripe_mode = ?", chargeID, mode).
		Limit(1).Find(&donation)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &donation, nil
}

// ListByDonorEmail 按捐赠人邮箱获取捐赠记录（忽略大小写）
func (r *GormDonationRepository) ListByDonorEmail(email string) ([]models.Donation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var donations []models.Donation
	err := r.db.Where("lower(donor_email) = ?", email).
		Order("created_at desc").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

// List 获取捐赠记录列表
func (r *GormDonationRepository) List(filter DonationListFilter) ([]models.Donation, int64, error) {
	query := r.db.Model(&models.Donation{})
	if filter.DonorID > 0 {
		query = query.Where("donor_id = ?", filter.DonorID)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.DonorEmail)); email != "" {
		query = query.Where("lower(donor_email) = ?", email)
	}
	if filter.Frequency != "" {
		query = query.Where("frequency = ?", filter.Frequency)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var donations []models.Donation
	if err := query.Order("created_at desc").Find(&donations).Error; err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

// Create 创建捐赠记录
func (r *GormDonationRepository) Create(donation *models.Donation) error {
	return r.db.Create(donation).Error
}

// Update 更新捐赠记录
func (r *GormDonationRepository) Update(donation *models.Donation) error {
	return r.db.Save(donation).Error
}
