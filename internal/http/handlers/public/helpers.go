package public

import (
	"strconv"

	"github.com/kharido-next/internal/http/response"
	"github.com/kharido-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// requestLog 返回携带 request_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if raw, ok := c.Get("request_id"); ok {
		if id, ok := raw.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// respondError 统一错误响应，有原始错误时同时落日志
func respondError(c *gin.Context, code int, key string, err error) {
	if err != nil {
		requestLog(c).Errorw("handler_error", "code", code, "message", key, "error", err)
	}
	response.Error(c, code, key)
}

// pageParams 解析查询串中的分页参数
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return normalizePagination(page, pageSize)
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}

// getUserID 读取认证中间件注入的用户 ID
func getUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := asUint(raw)
	if !ok {
		respondError(c, response.CodeInternal, "error.user_id_type_invalid", nil)
		return 0, false
	}
	return id, true
}

func asUint(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v >= 0 {
			return uint(v), true
		}
	case int64:
		if v >= 0 {
			return uint(v), true
		}
	case float64:
		if v >= 0 {
			return uint(v), true
		}
	}
	return 0, false
}
