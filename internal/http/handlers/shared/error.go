package shared

import (
	"github.com/shopcart-next/internal/http/response"
	"github.com/shopcart-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 返回带 request_id 字段的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString("request_id"); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 按消息键输出错误响应，err 非空时记录原始错误
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.WrapError(code, key, Message(key), err)
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"path", c.FullPath(),
			"error", appErr.Err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}
