package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopcart-next/internal/models"
)

// CartLineView 购物车行展示数据（价格、名称、库存上限均为读取时计算）
type CartLineView struct {
	CatalogItemID string       `json:"catalog_item_id"`
	DisplayName   string       `json:"display_name"`
	UnitPrice     models.Money `json:"unit_price"`
	Quantity      int          `json:"quantity"`
	MaxQuantity   int          `json:"max_quantity"`
	SubTotal      models.Money `json:"sub_total"`
}

// CartView 购物车展示数据
type CartView struct {
	ID            string         `json:"id"`
	StatusMessage string         `json:"status_message"`
	Total         models.Money   `json:"total"`
	Lines         []CartLineView `json:"lines"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Enrich 使用当前目录数据生成购物车展示数据，不修改购物车本身
func (s *CartService) Enrich(cart *models.Cart) (*CartView, error) {
	return enrichCart(newCatalogSession(s.catalog), cart)
}

func enrichCart(session *catalogSession, cart *models.Cart) (*CartView, error) {
	if cart == nil {
		return nil, ErrCartNotFound
	}
	view := &CartView{
		ID:            cart.ID,
		StatusMessage: cart.StatusMessage,
		Lines:         make([]CartLineView, 0, len(cart.Lines)),
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
	}
	for _, line := range cart.Lines {
		item, err := session.find(line.CatalogItemID)
		if err != nil {
			return nil, err
		}
		subTotal := item.UnitPrice.MulQuantity(line.Quantity)
		view.Lines = append(view.Lines, CartLineView{
			CatalogItemID: line.CatalogItemID,
			DisplayName:   item.DisplayName(line.Quantity),
			UnitPrice:     item.UnitPrice,
			Quantity:      line.Quantity,
			MaxQuantity:   item.Quantity,
			SubTotal:      subTotal,
		})
		view.Total = view.Total.Add(subTotal)
	}
	return view, nil
}

// catalogSession 单次操作内的目录查询，同一商品只查询一次
type catalogSession struct {
	lookup CatalogLookup
	items  map[string]*models.CatalogItem
}

func newCatalogSession(lookup CatalogLookup) *catalogSession {
	return &catalogSession{lookup: lookup, items: make(map[string]*models.CatalogItem)}
}

func (c *catalogSession) find(id string) (*models.CatalogItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCatalogItemNotFound
	}
	if item, ok := c.items[id]; ok {
		return item, nil
	}
	if c.lookup == nil {
		return nil, ErrCatalogItemNotFound
	}
	item, err := c.lookup.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetchFailed, err)
	}
	if item == nil {
		return nil, ErrCatalogItemNotFound
	}
	c.items[id] = item
	return item, nil
}
