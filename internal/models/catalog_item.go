package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogItem 目录商品（库存与价格由目录维护，购物车只读）
type CatalogItem struct {
	ID         string         `gorm:"primarykey;type:varchar(36)" json:"id"`                   // 主键（UUID）
	Name       string         `gorm:"type:varchar(255);not null;index" json:"name"`            // 单数名称
	NamePlural string         `gorm:"type:varchar(255);not null" json:"name_plural"`           // 复数名称
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	Quantity   int            `gorm:"not null;default:0" json:"quantity"`                      // 可用库存
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// DisplayName 根据数量选择单复数名称
func (c *CatalogItem) DisplayName(quantity int) string {
	if c == nil {
		return ""
	}
	if quantity > 1 && c.NamePlural != "" {
		return c.NamePlural
	}
	return c.Name
}

// BeforeCreate 缺省时生成 UUID 主键
func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
