package models

// CartLineItem 购物车行项目，只持久化商品引用与数量
type CartLineItem struct {
	ID            uint   `gorm:"primarykey" json:"-"`                                                             // 主键（决定行顺序）
	CartID        string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_line_item" json:"-"`               // 购物车ID
	CatalogItemID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_line_item" json:"catalog_item_id"` // 目录商品ID
	Quantity      int    `gorm:"not null;default:0" json:"quantity"`                                              // 数量
}

// TableName 指定表名
func (CartLineItem) TableName() string {
	return "cart_line_items"
}
