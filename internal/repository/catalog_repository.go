package repository

import (
	"errors"
	"strings"

	"github.com/shopcart-next/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository 目录商品数据访问接口
type CatalogRepository interface {
	FindByID(id string) (*models.CatalogItem, error)
	FindByName(name string) (*models.CatalogItem, error)
	List(filter CatalogListFilter) ([]models.CatalogItem, int64, error)
	Create(item *models.CatalogItem) error
	Update(item *models.CatalogItem) error
	Delete(id string) error
}

// GormCatalogRepository GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindByID 按 ID 获取目录商品，不存在返回 nil
func (r *GormCatalogRepository) FindByID(id string) (*models.CatalogItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var item models.CatalogItem
	if err := r.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindByName 按名称获取目录商品
func (r *GormCatalogRepository) FindByName(name string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.Where("name = ?", strings.TrimSpace(name)).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// List 目录商品列表
func (r *GormCatalogRepository) List(filter CatalogListFilter) ([]models.CatalogItem, int64, error) {
	var items []models.CatalogItem

	query := r.db.Model(&models.CatalogItem{})
	if cond, args := buildLikeCondition(r.db, filter.Search, "name", "name_plural"); cond != "" {
		query = query.Where(cond, args...)
	}
	if filter.InStock {
		query = query.Where("quantity > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("name ASC, id ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建目录商品
func (r *GormCatalogRepository) Create(item *models.CatalogItem) error {
	return r.db.Create(item).Error
}

// Update 更新目录商品
func (r *GormCatalogRepository) Update(item *models.CatalogItem) error {
	return r.db.Save(item).Error
}

// Delete 删除目录商品（软删除）
func (r *GormCatalogRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.CatalogItem{}).Error
}
