package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopcart-next/internal/constants"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/models"
	"github.com/shopcart-next/internal/queue"
)

// CatalogLookup 目录查询能力，不存在时返回 (nil, nil)
type CatalogLookup interface {
	FindByID(id string) (*models.CatalogItem, error)
}

// CartStore 购物车存储能力，FindByID 需预加载全部行项目
type CartStore interface {
	FindByID(id string) (*models.Cart, error)
	Create(cart *models.Cart) error
	Update(cart *models.Cart) error
	Delete(cart *models.Cart) error
	ListIdleBefore(before time.Time, limit int) ([]models.Cart, error)
}

// CartExpiryScheduler 购物车过期任务调度
type CartExpiryScheduler interface {
	EnqueueCartExpire(payload queue.CartExpirePayload, delay time.Duration) error
}

// CartLineRequest 请求中的购物车行
type CartLineRequest struct {
	CatalogItemID string
	Quantity      int
}

// StockShortage 库存不足信息
type StockShortage struct {
	CatalogItemID string `json:"catalog_item_id"`
	ItemName      string `json:"item_name"`
	MaxQuantity   int    `json:"max_quantity"`
}

// Message 库存不足提示文案
func (s StockShortage) Message() string {
	return fmt.Sprintf(constants.CartMessageStockExceeded, s.ItemName, s.MaxQuantity)
}

// CartResult 购物车操作结果
type CartResult struct {
	Cart     *CartView
	Outcome  string
	Shortage *StockShortage
}

// CartServiceOptions 购物车服务选项
type CartServiceOptions struct {
	// StrictStock 为 true 时，Increase 新增行超出库存也不会加入购物车
	StrictStock bool
	// ExpireAfter 闲置过期时长，0 表示不过期
	ExpireAfter time.Duration
	Now         func() time.Time
}

// CartService 购物车业务服务
type CartService struct {
	carts     CartStore
	catalog   CatalogLookup
	scheduler CartExpiryScheduler
	opts      CartServiceOptions
}

// NewCartService 创建购物车服务
func NewCartService(carts CartStore, catalog CatalogLookup, scheduler CartExpiryScheduler, opts CartServiceOptions) *CartService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CartService{
		carts:     carts,
		catalog:   catalog,
		scheduler: scheduler,
		opts:      opts,
	}
}

func (s *CartService) now() time.Time {
	return s.opts.Now().UTC()
}

// Create 按请求行创建购物车
func (s *CartService) Create(lines []CartLineRequest) (*CartResult, error) {
	requested, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}
	session := newCatalogSession(s.catalog)
	shortage, err := checkStock(session, requested)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cart := &models.Cart{CreatedAt: now, UpdatedAt: now}
	outcome := constants.CartOutcomeCreated
	if shortage != nil {
		// 超出库存时仍然创建购物车，但不写入任何请求行
		outcome = constants.CartOutcomeStockExceeded
		cart.StatusMessage = shortage.Message()
	} else {
		cart.Lines = toLineItems(requested)
		cart.StatusMessage = constants.CartMessageCreated
	}

	if err := s.carts.Create(cart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCartSaveFailed, err)
	}
	s.scheduleExpire(cart.ID, s.opts.ExpireAfter)
	logger.Infow("cart_created", "cart_id", cart.ID, "lines", len(cart.Lines), "outcome", outcome)

	return s.result(session, cart, outcome, shortage)
}

// Get 获取购物车详情
func (s *CartService) Get(cartID string) (*CartView, error) {
	cart, err := s.findCart(cartID)
	if err != nil {
		return nil, err
	}
	return s.Enrich(cart)
}

// Update 以请求行整体替换购物车内容
func (s *CartService) Update(cartID string, lines []CartLineRequest) (*CartResult, error) {
	requested, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}
	cart, err := s.findCart(cartID)
	if err != nil {
		return nil, err
	}
	session := newCatalogSession(s.catalog)
	shortage, err := checkStock(session, requested)
	if err != nil {
		return nil, err
	}
	if shortage != nil {
		// 购物车保持原样，仅在返回结果中提示
		cart.StatusMessage = shortage.Message()
		logger.Infow("cart_stock_exceeded", "cart_id", cart.ID, "catalog_item_id", shortage.CatalogItemID, "max_quantity", shortage.MaxQuantity)
		return s.result(session, cart, constants.CartOutcomeStockExceeded, shortage)
	}

	cart.Lines = toLineItems(requested)
	cart.StatusMessage = constants.CartMessageUpdated
	if err := s.commit(cart); err != nil {
		return nil, err
	}
	return s.result(session, cart, constants.CartOutcomeUpdated, nil)
}

// Remove 删除购物车，购物车不存在时静默成功
func (s *CartService) Remove(cartID string) error {
	cart, err := s.carts.FindByID(strings.TrimSpace(cartID))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCartFetchFailed, err)
	}
	if cart == nil {
		return nil
	}
	if err := s.carts.Delete(cart); err != nil {
		return fmt.Errorf("%w: %w", ErrCartDeleteFailed, err)
	}
	logger.Infow("cart_removed", "cart_id", cart.ID)
	return nil
}

// RemoveItem 从购物车移除商品，行不存在时静默成功
func (s *CartService) RemoveItem(cartID, itemID string) (*CartResult, error) {
	cart, err := s.findCart(cartID)
	if err != nil {
		return nil, err
	}
	session := newCatalogSession(s.catalog)
	item, err := session.find(itemID)
	if err != nil {
		return nil, err
	}

	cart.RemoveLine(item.ID)
	cart.StatusMessage = constants.CartMessageItemRemoved
	if err := s.commit(cart); err != nil {
		return nil, err
	}
	return s.result(session, cart, constants.CartOutcomeItemRemoved, nil)
}

// Increase 增加商品数量，行不存在时新建
func (s *CartService) Increase(cartID, itemID string, delta int) (*CartResult, error) {
	if delta < 0 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.findCart(cartID)
	if err != nil {
		return nil, err
	}
	session := newCatalogSession(s.catalog)
	item, err := session.find(itemID)
	if err != nil {
		return nil, err
	}

	var shortage *StockShortage
	if line := cart.FindLine(item.ID); line != nil {
		if delta > item.Quantity-line.Quantity {
			shortage = shortageOf(item)
		} else {
			line.Quantity += delta
		}
	} else {
		if delta > item.Quantity {
			shortage = shortageOf(item)
		}
		if shortage == nil || !s.opts.StrictStock {
			cart.Lines = append(cart.Lines, models.CartLineItem{
				CartID:        cart.ID,
				CatalogItemID: item.ID,
				Quantity:      delta,
			})
		}
	}

	outcome := constants.CartOutcomeQuantityUpdated
	cart.StatusMessage = constants.CartMessageQuantityUpdated
	if shortage != nil {
		outcome = constants.CartOutcomeStockExceeded
		cart.StatusMessage = shortage.Message()
	}
	if err := s.commit(cart); err != nil {
		return nil, err
	}
	return s.result(session, cart, outcome, shortage)
}

// Decrease 减少商品数量，最低为 0，不删除行
func (s *CartService) Decrease(cartID, itemID string, delta int) (*CartResult, error) {
	if delta < 0 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.findCart(cartID)
	if err != nil {
		return nil, err
	}
	session := newCatalogSession(s.catalog)
	item, err := session.find(itemID)
	if err != nil {
		return nil, err
	}

	if line := cart.FindLine(item.ID); line != nil {
		line.Quantity -= min(delta, line.Quantity)
	}
	cart.StatusMessage = constants.CartMessageQuantityUpdated
	if err := s.commit(cart); err != nil {
		return nil, err
	}
	return s.result(session, cart, constants.CartOutcomeQuantityUpdated, nil)
}

// ExpireIfIdle 删除闲置超过 ttl 的购物车，未到期时重新调度，返回是否已删除
func (s *CartService) ExpireIfIdle(cartID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	cart, err := s.carts.FindByID(strings.TrimSpace(cartID))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCartFetchFailed, err)
	}
	if cart == nil {
		return false, nil
	}
	idle := s.now().Sub(cart.UpdatedAt)
	if idle < ttl {
		s.scheduleExpire(cart.ID, ttl-idle)
		return false, nil
	}
	if err := s.carts.Delete(cart); err != nil {
		return false, fmt.Errorf("%w: %w", ErrCartDeleteFailed, err)
	}
	logger.Infow("cart_expired", "cart_id", cart.ID, "idle", idle.String())
	return true, nil
}

// SweepIdle 批量删除闲置超过 ttl 的购物车，返回删除数量
func (s *CartService) SweepIdle(ttl time.Duration, limit int) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	carts, err := s.carts.ListIdleBefore(s.now().Add(-ttl), limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCartFetchFailed, err)
	}
	removed := 0
	for i := range carts {
		if err := s.carts.Delete(&carts[i]); err != nil {
			return removed, fmt.Errorf("%w: %w", ErrCartDeleteFailed, err)
		}
		removed++
	}
	if removed > 0 {
		logger.Infow("cart_idle_swept", "count", removed, "ttl", ttl.String())
	}
	return removed, nil
}

func (s *CartService) findCart(cartID string) (*models.Cart, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, ErrCartNotFound
	}
	cart, err := s.carts.FindByID(cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCartFetchFailed, err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) commit(cart *models.Cart) error {
	cart.UpdatedAt = s.now()
	if err := s.carts.Update(cart); err != nil {
		return fmt.Errorf("%w: %w", ErrCartSaveFailed, err)
	}
	return nil
}

func (s *CartService) result(session *catalogSession, cart *models.Cart, outcome string, shortage *StockShortage) (*CartResult, error) {
	view, err := enrichCart(session, cart)
	if err != nil {
		return nil, err
	}
	return &CartResult{Cart: view, Outcome: outcome, Shortage: shortage}, nil
}

func (s *CartService) scheduleExpire(cartID string, delay time.Duration) {
	if s.scheduler == nil || delay <= 0 || cartID == "" {
		return
	}
	if err := s.scheduler.EnqueueCartExpire(queue.CartExpirePayload{CartID: cartID}, delay); err != nil {
		logger.Warnw("cart_expire_enqueue_failed", "cart_id", cartID, "error", err)
	}
}

// normalizeLines 校验请求行并合并重复商品（保留首次出现的位置）
func normalizeLines(lines []CartLineRequest) ([]CartLineRequest, error) {
	result := make([]CartLineRequest, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		id := strings.TrimSpace(line.CatalogItemID)
		if id == "" {
			return nil, ErrInvalidCartItem
		}
		if line.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		if pos, ok := index[id]; ok {
			if line.Quantity > math.MaxInt-result[pos].Quantity {
				return nil, ErrInvalidQuantity
			}
			result[pos].Quantity += line.Quantity
			continue
		}
		index[id] = len(result)
		result = append(result, CartLineRequest{CatalogItemID: id, Quantity: line.Quantity})
	}
	return result, nil
}

// checkStock 按请求顺序检查库存，返回第一个超出库存的商品
func checkStock(session *catalogSession, lines []CartLineRequest) (*StockShortage, error) {
	for _, line := range lines {
		item, err := session.find(line.CatalogItemID)
		if err != nil {
			return nil, err
		}
		if line.Quantity > item.Quantity {
			return shortageOf(item), nil
		}
	}
	return nil, nil
}

func shortageOf(item *models.CatalogItem) *StockShortage {
	return &StockShortage{
		CatalogItemID: item.ID,
		ItemName:      item.Name,
		MaxQuantity:   item.Quantity,
	}
}

func toLineItems(lines []CartLineRequest) []models.CartLineItem {
	items := make([]models.CartLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.CartLineItem{
			CatalogItemID: line.CatalogItemID,
			Quantity:      line.Quantity,
		})
	}
	return items
}
