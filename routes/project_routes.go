package routes

import (
	"github.com/BerniceZTT/bid_tracker/controllers"
	"github.com/BerniceZTT/bid_tracker/middleware"
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

// RegisterProjectRoutes 注册项目路由
func RegisterProjectRoutes(router *gin.Engine, pc *controllers.ProjectController, tokens *utils.TokenManager) {
	projectGroup := router.Group("/api/projects")
	projectGroup.Use(middleware.AuthMiddleware(tokens))

	projectGroup.GET("", pc.GetAllProjects)
	projectGroup.GET("/:id", pc.GetProjectDetail)
	projectGroup.POST("", pc.CreateProject)
	projectGroup.PUT("", pc.ReplaceProjects)
	projectGroup.PUT("/:id", pc.UpdateProject)
	projectGroup.PATCH("/:id/status", pc.UpdateProjectStatus)
	projectGroup.DELETE("/:id", pc.DeleteProject)

	router.GET("/api/statuses", middleware.AuthMiddleware(tokens), pc.GetStatuses)
}
