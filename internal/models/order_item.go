package models

import "time"

// OrderItem 订单项
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	OrderID      uint      `gorm:"index;not null" json:"order_id"`
	ProductRef   string    `gorm:"type:varchar(64);index" json:"product_ref"`
	ProductName  string    `gorm:"type:varchar(200)" json:"product_name"`
	ListPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"list_price"`
	Discount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	Quantity     int       `gorm:"not null;default:1" json:"quantity"`
	ReturnOption string    `gorm:"type:varchar(20);not null;default:none" json:"return_option"`
	ReturnCharge Money     `gorm:"type:decimal(20,2);not null;default:0" json:"return_charge"`
	TotalPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // (标价-折扣)×数量
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
