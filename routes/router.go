package routes

import (
	"net/http"

	"github.com/BerniceZTT/bid_tracker/controllers"
	"github.com/BerniceZTT/bid_tracker/repository"
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

// Dependencies 路由依赖
type Dependencies struct {
	Store         *repository.Store
	Tokens        *utils.TokenManager
	AdminUsername string
	AdminPassword string // bcrypt 哈希
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	// 注册认证路由
	RegisterAuthRoutes(router, controllers.NewAuthController(deps.AdminUsername, deps.AdminPassword, deps.Tokens), deps.Tokens)

	RegisterProjectRoutes(router, controllers.NewProjectController(deps.Store), deps.Tokens)
	RegisterDashboardStatsRoutes(router, controllers.NewDashboardController(deps.Store), deps.Tokens)

	// 健康检查路由
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 存储状态检查路由
	router.GET("/api/storage-status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"backend":  deps.Store.BackendName(),
			"projects": len(deps.Store.Records()),
		})
	})
}
