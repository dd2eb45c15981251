package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券表
type Coupon struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`
	Type         string         `gorm:"not null" json:"type"` // fixed / percent
	Value        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value"`
	MaxDiscount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"` // percent 类型的折扣上限，0 表示不设上限
	MinAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`
	// 不声明列默认值：gorm 对带 default 的零值字段跳过写入，false 会被默认值覆盖
	IsActive     bool           `gorm:"not null" json:"is_active"`
	StartsAt     *time.Time     `json:"starts_at,omitempty"`
	EndsAt       *time.Time     `json:"ends_at,omitempty"`
	UsageLimit   int            `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount    int            `gorm:"not null;default:0" json:"used_count"`
	PerUserLimit int            `gorm:"not null;default:0" json:"per_user_limit"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
