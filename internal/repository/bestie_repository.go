package repository

import (
	"errors"
	"strings"

	"github.com/bestie-next/internal/models"

	"gorm.io/gorm"
)

// BestieRepository 受助对象数据访问接口
type BestieRepository interface {
	GetByID(id uint) (*models.Bestie, error)
	GetByExternalID(externalID string) (*models.Bestie, error)
	List(filter BestieListFilter) ([]models.Bestie, int64, error)
	Create(bestie *models.Bestie) error
	Update(bestie *models.Bestie) error
}

// GormBestieRepository GORM 实现
type GormBestieRepository struct {
	db *gorm.DB
}

// NewBestieRepository 创建受助对象仓库
func NewBestieRepository(db *gorm.DB) *GormBestieRepository {
	return &GormBestieRepository{db: db}
}

// GetByID 根据 ID 获取受助对象
func (r *GormBestieRepository) GetByID(id uint) (*models.Bestie, error) {
	var bestie models.Bestie
	if err := r.db.First(&bestie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bestie, nil
}

// GetByExternalID 根据对外 ID 获取受助对象
func (r *GormBestieRepository) GetByExternalID(externalID string) (*models.Bestie, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	var bestie models.Bestie
	result := r.db.Where("external_id = ?", externalID).Limit(1).Find(&bestie)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &bestie, nil
}

// List 获取受助对象列表
func (r *GormBestieRepository) List(filter BestieListFilter) ([]models.Bestie, int64, error) {
	query := r.db.Model(&models.Bestie{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR slug LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var besties []models.Bestie
	if err := query.Order("id asc").Find(&besties).Error; err != nil {
		return nil, 0, err
	}
	return besties, total, nil
}

// Create 创建受助对象
func (r *GormBestieRepository) Create(bestie *models.Bestie) error {
	return r.db.Create(bestie).Error
}

// Update 更新受助对象
func (r *GormBestieRepository) Update(bestie *models.Bestie) error {
	return r.db.Save(bestie).Error
}
