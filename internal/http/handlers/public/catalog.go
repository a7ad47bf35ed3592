package public

import (
	"strconv"
	"strings"

	handlershared "github.com/shopcart-next/internal/http/handlers/shared"
	"github.com/shopcart-next/internal/http/response"
	"github.com/shopcart-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCatalog 目录列表
func (h *Handler) ListCatalog(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	inStock, _ := strconv.ParseBool(strings.TrimSpace(c.Query("in_stock")))

	result, err := h.CatalogService.List(c.Request.Context(), repository.CatalogListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		InStock:  inStock,
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, response.NewPagination(page, pageSize, result.Total))
}

// GetCatalogItem 目录商品详情
func (h *Handler) GetCatalogItem(c *gin.Context) {
	item, err := h.CatalogService.Get(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, item)
}
