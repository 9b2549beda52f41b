package routes

import (
	"github.com/BerniceZTT/bid_tracker/controllers"
	"github.com/BerniceZTT/bid_tracker/middleware"
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证路由
func RegisterAuthRoutes(router *gin.Engine, ac *controllers.AuthController, tokens *utils.TokenManager) {
	auth := router.Group("/api/auth")

	// 公开路由 - 不需要认证
	auth.POST("/login", ac.Login)

	// 需要认证的路由
	auth.GET("/validate", middleware.AuthMiddleware(tokens), ac.ValidateToken)
}
