package models

import "time"

// WalletAccount 钱包账户（余额 + 金币）
type WalletAccount struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	CoinBalance int64     `gorm:"not null;default:0" json:"coin_balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

// WalletTransaction 钱包流水（余额与金币共用一条流水，未发生的维度记 0）
type WalletTransaction struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	OrderID         *uint     `gorm:"index" json:"order_id,omitempty"`
	Type            string    `gorm:"index;not null" json:"type"`
	Direction       string    `gorm:"not null" json:"direction"`
	Amount          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	CoinAmount      int64     `gorm:"not null;default:0" json:"coin_amount"`
	BalanceBefore   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_before"`
	BalanceAfter    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`
	CoinBefore      int64     `gorm:"not null;default:0" json:"coin_before"`
	CoinAfter       int64     `gorm:"not null;default:0" json:"coin_after"`
	Currency        string    `gorm:"not null" json:"currency"`
	Reference       string    `gorm:"uniqueIndex;not null" json:"reference"`
	Remark          string    `gorm:"type:varchar(200)" json:"remark,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
