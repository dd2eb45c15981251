package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车条目
// 商品目录由外部系统维护，这里仅保留结算所需的价格快照字段。
type CartItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	ProductRef   string         `gorm:"type:varchar(64);index" json:"product_ref"` // 外部商品标识
	ProductName  string         `gorm:"type:varchar(200)" json:"product_name"`
	ListPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"list_price"`     // 标价（MRP）
	Discount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`       // 单件折扣
	Quantity     int            `gorm:"not null;default:1" json:"quantity"`
	ReturnOption string         `gorm:"type:varchar(20);not null;default:none" json:"return_option"` // none/standard/instant
	Selected     bool           `gorm:"not null" json:"selected"` // 列默认值会吞掉取消勾选的 false，见 Coupon.IsActive
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
