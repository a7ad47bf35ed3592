package public

import (
	handlershared "github.com/shopcart-next/internal/http/handlers/shared"
	"github.com/shopcart-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 公开接口处理器入口（购物车与目录）
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
