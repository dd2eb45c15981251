package repository

import (
	"strings"

	"github.com/kharido-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository 钱包账户与流水的持久化接口
type WalletRepository interface {
	GetAccountByUserID(userID uint) (*models.WalletAccount, error)
	GetAccountByUserIDForUpdate(userID uint) (*models.WalletAccount, error)
	CreateAccount(account *models.WalletAccount) error
	UpdateAccount(account *models.WalletAccount) error
	CreateTransaction(txn *models.WalletTransaction) error
	GetTransactionByReference(reference string) (*models.WalletTransaction, error)
	ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWalletRepository
}

// GormWalletRepository 基于 GORM 的钱包仓储
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 构造钱包仓储
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// Transaction 在单个数据库事务内执行 fn
func (r *GormWalletRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetAccountByUserID 查询用户的钱包账户，不存在时返回 nil
func (r *GormWalletRepository) GetAccountByUserID(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	return firstOrNil[models.WalletAccount](r.db, "user_id = ?", userID)
}

// GetAccountByUserIDForUpdate 以行锁读取用户钱包账户
func (r *GormWalletRepository) GetAccountByUserIDForUpdate(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return firstOrNil[models.WalletAccount](locked, "user_id = ?", userID)
}

// CreateAccount 新建钱包账户
func (r *GormWalletRepository) CreateAccount(account *models.WalletAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccount 保存钱包账户余额变更
func (r *GormWalletRepository) UpdateAccount(account *models.WalletAccount) error {
	return r.db.Save(account).Error
}

// CreateTransaction 写入钱包流水
func (r *GormWalletRepository) CreateTransaction(txn *models.WalletTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按唯一参考号查询流水
func (r *GormWalletRepository) GetTransactionByReference(reference string) (*models.WalletTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	return firstOrNil[models.WalletTransaction](r.db, "reference = ?", reference)
}

// ListTransactions 按条件分页查询流水，最新在前
func (r *GormWalletRepository) ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	query := r.db.Model(&models.WalletTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.WalletTransaction
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
