package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopcart-next/internal/cache"
	"github.com/shopcart-next/internal/constants"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/models"
	"github.com/shopcart-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogService 目录查询服务
type CatalogService struct {
	repo         repository.CatalogRepository
	listCacheTTL time.Duration
}

// NewCatalogService 创建目录服务
func NewCatalogService(repo repository.CatalogRepository, listCacheTTL time.Duration) *CatalogService {
	return &CatalogService{repo: repo, listCacheTTL: listCacheTTL}
}

// CatalogPage 目录分页结果
type CatalogPage struct {
	Items []models.CatalogItem `json:"items"`
	Total int64                `json:"total"`
}

// UpsertCatalogItemInput 目录商品写入参数
type UpsertCatalogItemInput struct {
	Name       string
	NamePlural string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// FindByID 实现 CatalogLookup，直接读取存储，不经过缓存
func (s *CatalogService) FindByID(id string) (*models.CatalogItem, error) {
	return s.repo.FindByID(id)
}

// Get 获取目录商品详情
func (s *CatalogService) Get(id string) (*models.CatalogItem, error) {
	item, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetchFailed, err)
	}
	if item == nil {
		return nil, ErrCatalogItemNotFound
	}
	return item, nil
}

// List 目录列表（短时缓存）
func (s *CatalogService) List(ctx context.Context, filter repository.CatalogListFilter) (*CatalogPage, error) {
	key := catalogListCacheKey(filter)
	if s.listCacheTTL > 0 {
		var cached CatalogPage
		hit, err := cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Warnw("catalog_list_cache_get_failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetchFailed, err)
	}
	page := &CatalogPage{Items: items, Total: total}
	if s.listCacheTTL > 0 {
		if err := cache.SetJSON(ctx, key, page, s.listCacheTTL); err != nil {
			logger.Warnw("catalog_list_cache_set_failed", "key", key, "error", err)
		}
	}
	return page, nil
}

// UpsertByName 按名称创建或更新目录商品
func (s *CatalogService) UpsertByName(input UpsertCatalogItemInput) (*models.CatalogItem, bool, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Quantity < 0 || input.UnitPrice.IsNegative() {
		return nil, false, ErrInvalidCatalogItem
	}
	plural := strings.TrimSpace(input.NamePlural)
	if plural == "" {
		plural = name
	}
	existing, err := s.repo.FindByName(name)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCatalogFetchFailed, err)
	}
	if existing != nil {
		existing.NamePlural = plural
		existing.UnitPrice = models.NewMoneyFromDecimal(input.UnitPrice)
		existing.Quantity = input.Quantity
		if err := s.repo.Update(existing); err != nil {
			return nil, false, err
		}
		s.invalidateListCache()
		return existing, false, nil
	}
	item := &models.CatalogItem{
		Name:       name,
		NamePlural: plural,
		UnitPrice:  models.NewMoneyFromDecimal(input.UnitPrice),
		Quantity:   input.Quantity,
	}
	if err := s.repo.Create(item); err != nil {
		return nil, false, err
	}
	s.invalidateListCache()
	return item, true, nil
}

func (s *CatalogService) invalidateListCache() {
	if s.listCacheTTL <= 0 {
		return
	}
	if _, err := cache.DelByPrefix(context.Background(), constants.CacheKeyCatalogList); err != nil {
		logger.Warnw("catalog_list_cache_invalidate_failed", "error", err)
	}
}

func catalogListCacheKey(filter repository.CatalogListFilter) string {
	return fmt.Sprintf("%s:%d:%d:%t:%s",
		constants.CacheKeyCatalogList,
		filter.Page,
		filter.PageSize,
		filter.InStock,
		strings.ToLower(strings.TrimSpace(filter.Search)),
	)
}
