package routes

import (
	"github.com/BerniceZTT/bid_tracker/controllers"
	"github.com/BerniceZTT/bid_tracker/middleware"
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

// RegisterDashboardStatsRoutes 注册数据看板统计相关路由
func RegisterDashboardStatsRoutes(router *gin.Engine, dc *controllers.DashboardController, tokens *utils.TokenManager) {
	dashboardStatsRoutes := router.Group("/api/dashboard-stats")
	dashboardStatsRoutes.Use(middleware.AuthMiddleware(tokens))

	dashboardStatsRoutes.GET("", dc.GetDashboardStats)
}
