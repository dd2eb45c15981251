package repository

import (
	"errors"
	"time"

	"github.com/kharido-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单及订单项的持久化接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	MarkNotified(id uint, at time.Time) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository 基于 GORM 的订单仓储
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 构造订单仓储
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// withItems 订单查询统一预载订单项
func (r *GormOrderRepository) withItems() *gorm.DB {
	return r.db.Preload("Items")
}

// Create 写入订单头并批量写入订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := r.db.Create(&items).Error; err != nil {
		return err
	}
	order.Items = items
	return nil
}

// GetByID 根据ID获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Order](r.withItems(), id)
}

// GetByIDAndUser 根据ID与用户获取订单
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	if id == 0 || userID == 0 {
		return nil, nil
	}
	return firstOrNil[models.Order](r.withItems(), "id = ? AND user_id = ?", id, userID)
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	if orderNo == "" {
		return nil, nil
	}
	return firstOrNil[models.Order](r.withItems(), "order_no = ?", orderNo)
}

// ListByUser 查询用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Items").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态，updates 可携带附加字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if id == 0 || status == "" {
		return errors.New("invalid order status update")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// MarkNotified 记录订单确认通知时间，只写一次
func (r *GormOrderRepository) MarkNotified(id uint, at time.Time) error {
	if id == 0 {
		return errors.New("invalid order id")
	}
	return r.db.Model(&models.Order{}).
		Where("id = ? AND notified_at IS NULL", id).
		Update("notified_at", at).Error
}
