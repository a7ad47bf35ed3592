package shared

// messages 接口错误文案表
var messages = map[string]string{
	"error.bad_request":            "Bad request",
	"error.too_many_requests":      "Too many requests, please try again later",
	"error.internal":               "Internal server error",
	"error.cart_not_found":         "Cart not found",
	"error.cart_item_invalid":      "Cart item is invalid",
	"error.cart_quantity_invalid":  "Quantity must not be negative",
	"error.cart_fetch_failed":      "Failed to load cart",
	"error.cart_save_failed":       "Failed to save cart",
	"error.cart_delete_failed":     "Failed to remove cart",
	"error.catalog_item_not_found": "Catalog item not found",
	"error.catalog_fetch_failed":   "Failed to load catalog",
	"error.service_unavailable":    "Service unavailable",
	"error.route_not_found":        "Route not found",
}

// Message 根据文案键获取提示信息，未登记的键原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
