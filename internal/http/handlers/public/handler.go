package public

import "github.com/kharido-next/internal/provider"

// Handler 用户侧 API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
