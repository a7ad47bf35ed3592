package constants

// 购物车操作结果
const (
	CartOutcomeCreated         = "created"
	CartOutcomeUpdated         = "updated"
	CartOutcomeItemRemoved     = "item_removed"
	CartOutcomeQuantityUpdated = "quantity_updated"
	CartOutcomeRemoved         = "removed"
	CartOutcomeStockExceeded   = "stock_exceeded"
)

// 购物车状态提示文案
const (
	CartMessageCreated         = "Cart created"
	CartMessageUpdated         = "Cart items."
	CartMessageItemRemoved     = "Item removed from cart"
	CartMessageQuantityUpdated = "Item quantity updated"
	CartMessageRemoved         = "Cart removed"
	CartMessageStockExceeded   = "Item: %s is out of stock, Max Qty: %d"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskCartExpire = "cart:expire"
)

// 缓存 key 前缀
const (
	CacheKeyCatalogList = "catalog:list"
)
