package models

import "time"

// CouponUsage 优惠券使用记录
type CouponUsage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CouponID  uint      `gorm:"index;not null" json:"coupon_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	Discount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
