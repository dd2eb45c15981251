package repository

import (
	"github.com/kharido-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车条目读写接口
type CartRepository interface {
	ListSelectedByUser(userID uint) ([]models.CartItem, error)
	ListByUser(userID uint) ([]models.CartItem, error)
	Create(item *models.CartItem) error
	DeleteByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository 基于 GORM 的购物车仓储
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 构造购物车仓储
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListSelectedByUser 获取用户勾选的购物车条目
func (r *GormCartRepository) ListSelectedByUser(userID uint) ([]models.CartItem, error) {
	if userID == 0 {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := r.db.Where("user_id = ? AND selected = ?", userID, true).
		Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUser 获取用户全部购物车条目
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	if userID == 0 {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 新增购物车条目
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// DeleteByUser 清空用户购物车（下单成功后调用）
func (r *GormCartRepository) DeleteByUser(userID uint) error {
	if userID == 0 {
		return nil
	}
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
