package repository

import (
	"errors"
	"strings"

	"github.com/bestie-next/internal/models"

	"gorm.io/gorm"
)

// SponsorshipRepository 助养记录数据访问接口
type SponsorshipRepository interface {
	GetByID(id uint) (*models.Sponsorship, error)
	ListByProviderRefs(mode string, refs []string) ([]models.Sponsorship, error)
	ListBySponsorEmail(email string) ([]models.Sponsorship, error)
	Create(sponsorship *models.Sponsorship) error
	Update(sponsorship *models.Sponsorship) error
}

// GormSponsorshipRepository GORM 实现
type GormSponsorshipRepository struct {
	db *gorm.DB
}

// NewSponsorshipRepository 创建助养记录仓库
func NewSponsorshipRepository(db *gorm.DB) *GormSponsorshipRepository {
	return &GormSponsorshipRepository{db: db}
}

// GetByID 根据 ID 获取助养记录
func (r *GormSponsorshipRepository) GetByID(id uint) (*models.Sponsorship, error) {
	var sponsorship models.Sponsorship
	if err := r.db.Preload("Bestie").First(&sponsorship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sponsorship, nil
}

// ListByProviderRefs 按支付平台引用批量查询助养记录，引用可匹配订阅或支付意向任一列
func (r *GormSponsorshipRepository) ListByProviderRefs(mode string, refs []string) ([]models.Sponsorship, error) {
	cleaned := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			cleaned = append(cleaned, ref)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	var sponsorships []models.Sponsorship
	err := r.db.Preload("Bestie").
		Where("stripe_mode = ?", mode).
		Where("stripe_subscription_id IN ? OR stripe_payment_intent_id IN ?", cleaned, cleaned).
		Find(&sponsorships).Error
	if err != nil {
		return nil, err
	}
	return sponsorships, nil
}

// ListBySponsorEmail 按助养人邮箱获取助养记录（忽略大小写）
func (r *GormSponsorshipRepository) ListBySponsorEmail(email string) ([]models.Sponsorship, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var sponsorships []models.Sponsorship
	err := r.db.Preload("Bestie").
		Where("lower(sponsor_email) = ?", email).
		Order("id asc").
		Find(&sponsorships).Error
	if err != nil {
		return nil, err
	}
	return sponsorships, nil
}

// Create 创建助养记录
func (r *GormSponsorshipRepository) Create(sponsorship *models.Sponsorship) error {
	return r.db.Create(sponsorship).Error
}

// Update 更新助养记录
func (r *GormSponsorshipRepository) Update(sponsorship *models.Sponsorship) error {
	return r.db.Save(sponsorship).Error
}
