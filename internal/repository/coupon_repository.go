package repository

import (
	"github.com/kharido-next/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券读写接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	IncrementUsedCount(id uint, delta int) error
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// CouponUsageRepository 优惠券核销记录读写接口
type CouponUsageRepository interface {
	Create(usage *models.CouponUsage) error
	CountByUser(couponID, userID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormCouponUsageRepository
}

// GormCouponRepository 基于 GORM 的优惠券仓储
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 构造优惠券仓储
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// GetByID 按主键查询优惠券，不存在时返回 nil
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Coupon](r.db, id)
}

// GetByCode 按优惠码查询，不存在时返回 nil
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	return firstOrNil[models.Coupon](r.db, "code = ?", code)
}

// Create 新建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// IncrementUsedCount 累加使用次数
func (r *GormCouponRepository) IncrementUsedCount(id uint, delta int) error {
	if id == 0 || delta == 0 {
		return nil
	}
	return r.db.Model(&models.Coupon{}).Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", delta)).Error
}

// GormCouponUsageRepository 基于 GORM 的核销记录仓储
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 构造核销记录仓储
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) *GormCouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// Create 写入使用记录
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) error {
	return r.db.Create(usage).Error
}

// CountByUser 统计用户对某券的使用次数
func (r *GormCouponUsageRepository) CountByUser(couponID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}
