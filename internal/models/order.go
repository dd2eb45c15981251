package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 金额列完整保留结算时的价格拆解与支付分摊，便于对账。
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	OrderNo          string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID           uint           `gorm:"index;not null" json:"user_id"`
	Status           string         `gorm:"index;not null" json:"status"`
	Currency         string         `gorm:"not null" json:"currency"`
	TotalMRP         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_mrp"`
	ItemDiscount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"item_discount"`
	SubTotal         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"sub_total"`
	CouponDiscount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"coupon_discount"`
	ReturnCharges    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"return_charges"`
	GrandTotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`
	WalletPaidAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_paid_amount"`
	CoinPaidAmount   int64          `gorm:"not null;default:0" json:"coin_paid_amount"` // 金币数量
	CoinPaidValue    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"coin_paid_value"`
	OnlinePaidAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"online_paid_amount"`
	CodDueAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cod_due_amount"`
	Channel          string         `gorm:"index;not null" json:"channel"` // online / cod
	CouponID         *uint          `gorm:"index" json:"coupon_id,omitempty"`
	ClientIP         string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`
	PaidAt           *time.Time     `gorm:"index" json:"paid_at,omitempty"`
	NotifiedAt       *time.Time     `json:"notified_at,omitempty"` // 确认通知发出时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
