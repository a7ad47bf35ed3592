package repository

// CatalogListFilter 目录列表过滤条件
type CatalogListFilter struct {
	Page     int
	PageSize int
	Search   string // 按单数/复数名称模糊匹配
	InStock  bool   // 仅返回库存大于 0 的商品
}
