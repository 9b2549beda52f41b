package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/bid_tracker/config"
	"github.com/BerniceZTT/bid_tracker/middleware"
	"github.com/BerniceZTT/bid_tracker/repository"
	"github.com/BerniceZTT/bid_tracker/routes"
	"github.com/BerniceZTT/bid_tracker/service"
	"github.com/BerniceZTT/bid_tracker/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.Fatal().Err(err).Msg("加载配置失败")
	}

	// 初始化日志
	utils.InitLogger(cfg.Debug)

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 打开存储
	backend, err := repository.OpenBackend(context.Background(), cfg)
	if err != nil {
		utils.Logger.Fatal().Err(err).Str("format", cfg.StorageFormat).Msg("打开存储失败")
	}
	defer backend.Close()

	store := repository.NewStore(backend, repository.StoreOptions{
		Statuses:      cfg.Statuses,
		RequireClient: cfg.RequireClient,
	})
	records := store.Load(context.Background())
	utils.Logger.Info().Str("backend", backend.Name()).Int("projects", len(records)).Msg("项目数据已加载")

	// 截止日期检查
	var sweeper *service.DeadlineSweeper
	if cfg.DeadlineSweepCron != "" {
		sweeper = service.NewDeadlineSweeper(store, cfg.DeadlineWarnDays)
		if err := sweeper.Start(cfg.DeadlineSweepCron); err != nil {
			utils.Logger.Fatal().Err(err).Msg("启动截止日期检查失败")
		}
		defer sweeper.Stop()
	}

	// 创建Gin实例
	router := gin.New()

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowOrigins))
	router.Use(middleware.ErrorHandler())

	// 注册路由
	routes.RegisterRoutes(router, routes.Dependencies{
		Store:         store,
		Tokens:        utils.NewTokenManager(cfg.JWTKey, utils.TokenTTL),
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPasswordHash,
	})

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
