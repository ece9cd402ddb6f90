package models

import (
	"time"

	"gorm.io/gorm"
)

// Bestie 受助对象表（赞助指向的被帮扶方）
type Bestie struct {
	ID          uint           `gorm:"primarykey" json:"id"`                    // 主键
	ExternalID  string         `gorm:"uniqueIndex;not null" json:"external_id"` // 对外 ID（元数据中引用的标识）
	Name        string         `gorm:"not null" json:"name"`                    // 名称
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`        // 链接标识
	Description string         `gorm:"type:text" json:"description"`            // 简介
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`  // 是否开放赞助
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Bestie) TableName() string {
	return "besties"
}
