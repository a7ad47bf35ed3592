package repository

import (
	"errors"
	"time"

	"github.com/shopcart-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	FindByID(id string) (*models.Cart, error)
	Create(cart *models.Cart) error
	Update(cart *models.Cart) error
	Delete(cart *models.Cart) error
	ListIdleBefore(before time.Time, limit int) ([]models.Cart, error)
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// FindByID 获取购物车（预加载全部行项目）
func (r *GormCartRepository) FindByID(id string) (*models.Cart, error) {
	if id == "" {
		return nil, nil
	}
	var cart models.Cart
	if err := r.db.Preload("Lines", preloadLines).Where("id = ?", id).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车及其行项目
func (r *GormCartRepository) Create(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(cart).Error; err != nil {
			return err
		}
		return insertLines(tx, cart)
	})
}

// Update 更新购物车并以当前行集合整体替换已持久化的行
func (r *GormCartRepository) Update(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
			"status_message": cart.StatusMessage,
			"updated_at":     cart.UpdatedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartLineItem{}).Error; err != nil {
			return err
		}
		return insertLines(tx, cart)
	})
}

// Delete 删除购物车及其全部行项目
func (r *GormCartRepository) Delete(cart *models.Cart) error {
	if cart == nil || cart.ID == "" {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartLineItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", cart.ID).Delete(&models.Cart{}).Error
	})
}

// ListIdleBefore 获取最后更新时间早于指定时间的购物车
func (r *GormCartRepository) ListIdleBefore(before time.Time, limit int) ([]models.Cart, error) {
	if limit <= 0 {
		limit = 100
	}
	var carts []models.Cart
	if err := r.db.Where("updated_at < ?", before).Order("updated_at ASC").Limit(limit).Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

func insertLines(tx *gorm.DB, cart *models.Cart) error {
	if len(cart.Lines) == 0 {
		return nil
	}
	for i := range cart.Lines {
		cart.Lines[i].ID = 0
		cart.Lines[i].CartID = cart.ID
	}
	return tx.Create(&cart.Lines).Error
}
