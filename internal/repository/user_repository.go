package repository

import (
	"strings"

	"github.com/kharido-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户读写接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository 基于 GORM 的用户仓储
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 构造用户仓储
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByID 根据ID获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.User](r.db, id)
}

// GetByEmail 根据邮箱获取用户，邮箱统一小写比较
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, nil
	}
	return firstOrNil[models.User](r.db, "email = ?", normalized)
}

// Create 新建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}
