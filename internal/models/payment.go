package models

import "time"

// Payment 支付记录
// 每次网关交互都会留痕；captured 状态表示网关已扣款但订单创建失败。
type Payment struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	OrderID          *uint      `gorm:"index" json:"order_id,omitempty"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	Provider         string     `gorm:"index;not null" json:"provider"` // razorpay / wallet / cod
	GatewayOrderID   string     `gorm:"index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string     `gorm:"index" json:"gateway_payment_id,omitempty"`
	Signature        string     `gorm:"type:varchar(200)" json:"-"`
	Amount           Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Currency         string     `gorm:"not null" json:"currency"`
	Status           string     `gorm:"index;not null" json:"status"`
	Remark           string     `gorm:"type:varchar(200)" json:"remark,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
