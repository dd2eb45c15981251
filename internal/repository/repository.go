package repository

import (
	"errors"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// firstOrNil 执行单行查询，未命中返回 nil 而非错误
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	row := new(T)
	if err := query.First(row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

// applyPagination 规范化分页参数并应用到查询
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
