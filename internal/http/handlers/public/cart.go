package public

import (
	"github.com/shopcart-next/internal/constants"
	"github.com/shopcart-next/internal/http/response"
	"github.com/shopcart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartLineInput 购物车行请求
type CartLineInput struct {
	CatalogItemID string `json:"catalog_item_id" binding:"required"`
	Quantity      int    `json:"quantity"`
}

// CartItemsRequest 创建/替换购物车请求
type CartItemsRequest struct {
	Items []CartLineInput `json:"items" binding:"dive"`
}

// CartQuantityRequest 增减数量请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse 购物车响应
type CartResponse struct {
	*service.CartView
	Outcome       string                 `json:"outcome,omitempty"`
	StockShortage *service.StockShortage `json:"stock_shortage,omitempty"`
}

func (r CartItemsRequest) toLines() []service.CartLineRequest {
	lines := make([]service.CartLineRequest, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, service.CartLineRequest{
			CatalogItemID: item.CatalogItemID,
			Quantity:      item.Quantity,
		})
	}
	return lines
}

func respondCartResult(c *gin.Context, result *service.CartResult) {
	response.SuccessWithMsg(c, result.Cart.StatusMessage, CartResponse{
		CartView:      result.Cart,
		Outcome:       result.Outcome,
		StockShortage: result.Shortage,
	})
}

// CreateCart 创建购物车
func (h *Handler) CreateCart(c *gin.Context) {
	var req CartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartService.Create(req.toLines())
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCartResult(c, result)
}

// GetCart 获取购物车详情（读取时计算价格与名称）
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.CartService.Get(c.Param("id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.SuccessWithMsg(c, view.StatusMessage, CartResponse{CartView: view})
}

// UpdateCart 整体替换购物车内容
func (h *Handler) UpdateCart(c *gin.Context) {
	var req CartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartService.Update(c.Param("id"), req.toLines())
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCartResult(c, result)
}

// RemoveCart 删除购物车
func (h *Handler) RemoveCart(c *gin.Context) {
	cartID := c.Param("id")
	if err := h.CartService.Remove(cartID); err != nil {
		respondCartError(c, err)
		return
	}
	response.SuccessWithMsg(c, constants.CartMessageRemoved, gin.H{
		"id":      cartID,
		"outcome": constants.CartOutcomeRemoved,
	})
}

// RemoveCartItem 从购物车移除商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	result, err := h.CartService.RemoveItem(c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCartResult(c, result)
}

// IncreaseCartItem 增加商品数量
func (h *Handler) IncreaseCartItem(c *gin.Context) {
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartService.Increase(c.Param("id"), c.Param("item_id"), req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCartResult(c, result)
}

// DecreaseCartItem 减少商品数量
func (h *Handler) DecreaseCartItem(c *gin.Context) {
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartService.Decrease(c.Param("id"), c.Param("item_id"), req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCartResult(c, result)
}
