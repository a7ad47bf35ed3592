package public

import (
	"errors"

	"github.com/shopcart-next/internal/http/response"
	"github.com/shopcart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			// 存储类错误保留原始错误用于日志
			if rule.code >= response.CodeInternal {
				respondError(c, rule.code, rule.key, err)
				return
			}
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartNotFound, code: response.CodeNotFound, key: "error.cart_not_found"},
	{target: service.ErrCatalogItemNotFound, code: response.CodeNotFound, key: "error.catalog_item_not_found"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: service.ErrCartFetchFailed, code: response.CodeInternal, key: "error.cart_fetch_failed"},
	{target: service.ErrCartSaveFailed, code: response.CodeInternal, key: "error.cart_save_failed"},
	{target: service.ErrCartDeleteFailed, code: response.CodeInternal, key: "error.cart_delete_failed"},
	{target: service.ErrCatalogFetchFailed, code: response.CodeInternal, key: "error.catalog_fetch_failed"},
}

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrCatalogItemNotFound, code: response.CodeNotFound, key: "error.catalog_item_not_found"},
	{target: service.ErrCatalogFetchFailed, code: response.CodeInternal, key: "error.catalog_fetch_failed"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.catalog_fetch_failed")
}
