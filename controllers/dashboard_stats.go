package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/repository"
	"github.com/BerniceZTT/bid_tracker/service"
	"github.com/BerniceZTT/bid_tracker/utils"
)

// DashboardController 数据看板
type DashboardController struct {
	store *repository.Store
}

// NewDashboardController 创建数据看板控制器
func NewDashboardController(store *repository.Store) *DashboardController {
	return &DashboardController{store: store}
}

// GetDashboardStats 获取数据看板统计信息
func (dc *DashboardController) GetDashboardStats(c *gin.Context) {
	status := c.Query("status")
	search := c.Query("q")
	recentParam := c.Query("recent")

	// 记录API请求
	utils.LogApiRequest("GET", "/api/dashboard-stats", nil, nil, map[string]string{
		"status": status,
		"q":      search,
		"recent": recentParam,
	})

	recent := service.DefaultRecentCount
	if recentParam != "" {
		n, err := strconv.Atoi(recentParam)
		if err != nil || n < 0 {
			_ = c.Error(utils.NewValidationError("recent", "must be a non-negative integer"))
			return
		}
		if n == 0 {
			n = -1
		}
		recent = n
	}

	query := service.DashboardQuery{Search: search, Recent: recent}
	if status != "" {
		query.Statuses = []models.Status{models.Status(status)}
	}

	stats := service.BuildDashboard(dc.store.Records(), dc.store.Statuses(), query)

	utils.LogInfo(map[string]interface{}{
		"projectCount":   stats.ProjectCount,
		"portfolioValue": stats.PortfolioValue,
		"listed":         len(stats.Projects),
	}, "获取数据看板统计信息")

	utils.SuccessResponse(c, stats, "")
}
