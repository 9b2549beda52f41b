package middleware

import (
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 将处理器通过 c.Error 记录的错误转换为统一的JSON错误响应
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 处理器已经写出响应时不再覆盖
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		utils.HandleError(c, c.Errors.Last().Err)
	}
}
