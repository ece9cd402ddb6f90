package public

import "github.com/bestie-next/internal/provider"

// Handler 前台/捐赠人接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
