package repository

import (
	"github.com/kharido-next/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付记录数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByGatewayOrderID(gatewayOrderID string) (*models.Payment, error)
	List(filter PaymentListFilter) ([]models.Payment, int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository 基于 GORM 的支付仓储
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 构造支付仓储
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 新建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update 保存支付记录变更
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByID 根据ID获取支付记录
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Payment](r.db, id)
}

// GetByGatewayOrderID 根据网关订单号获取支付记录
func (r *GormPaymentRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.Payment, error) {
	if gatewayOrderID == "" {
		return nil, nil
	}
	return firstOrNil[models.Payment](r.db, "gateway_order_id = ?", gatewayOrderID)
}

// List 分页查询支付记录
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
