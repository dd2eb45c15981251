package repository

import "time"

// OrderListFilter 订单列表过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	Channel     string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WalletTransactionListFilter 查询钱包流水的过滤条件
type WalletTransactionListFilter struct {
	Page      int
	PageSize  int
	UserID    uint
	Type      string
	Direction string
}

// PaymentListFilter 查询支付记录的过滤条件
type PaymentListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	OrderID  uint
	Provider string
	Status   string
}
