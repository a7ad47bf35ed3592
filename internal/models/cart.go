package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart 购物车聚合
type Cart struct {
	ID            string         `gorm:"primarykey;type:varchar(36)" json:"id"`   // 主键（UUID）
	StatusMessage string         `gorm:"type:varchar(255)" json:"status_message"` // 最近一次操作结果
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                 // 创建时间（UTC）
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间（UTC）
	Lines         []CartLineItem `gorm:"foreignKey:CartID" json:"lines"`          // 购物车行项目（按加入顺序）
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// FindLine 查找指定目录商品对应的行
func (c *Cart) FindLine(catalogItemID string) *CartLineItem {
	if c == nil {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].CatalogItemID == catalogItemID {
			return &c.Lines[i]
		}
	}
	return nil
}

// RemoveLine 移除指定目录商品对应的行，返回是否存在
func (c *Cart) RemoveLine(catalogItemID string) bool {
	if c == nil {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].CatalogItemID == catalogItemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// BeforeCreate 缺省时生成 UUID 主键
func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
