// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"med-assist-go/internal/config"
	"med-assist-go/internal/handler"
	"med-assist-go/internal/middleware"
	"med-assist-go/internal/model"
	"med-assist-go/internal/pipeline"
	"med-assist-go/internal/repository"
	"med-assist-go/internal/service"
	"med-assist-go/pkg/database"
	"med-assist-go/pkg/es"
	"med-assist-go/pkg/kafka"
	"med-assist-go/pkg/log"
	"med-assist-go/pkg/storage"
	"med-assist-go/pkg/tika"
	"med-assist-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储与搜索引擎
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.DB.AutoMigrate(&model.User{}, &model.Profile{}, &model.MedicalFile{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)
	fileRepo := repository.NewFileRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB)
	otpRepo := repository.NewOTPRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	tikaClient := tika.NewClient(cfg.Tika)
	authService := service.NewAuthService(userRepo, otpRepo, jwtManager)
	profileService := service.NewProfileService(profileRepo)
	fileService := service.NewFileService(fileRepo, conversationRepo)
	assistantService := service.NewAssistantService(conversationRepo, fileService)
	searchService := service.NewSearchService(es.ESClient)
	metricsService := service.NewMetricsService()

	// 6. 初始化报告处理管道 (Processor)
	processor := pipeline.NewProcessor(
		tikaClient,
		cfg.Elasticsearch,
		cfg.MinIO,
		fileRepo,
		conversationRepo,
	)

	// 7. 启动后台 Kafka 消费者
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler()
	profileHandler := handler.NewProfileHandler(profileService)
	reportHandler := handler.NewReportHandler(fileService)
	assistantHandler := handler.NewAssistantHandler(assistantService, jwtManager, userRepo)
	searchHandler := handler.NewSearchHandler(searchService)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	adminHandler := handler.NewAdminHandler(userRepo)

	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组 (公开访问)
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/otp/request", authHandler.RequestOTP)
			auth.POST("/otp/verify", authHandler.VerifyOTP)
			auth.POST("/guest", authHandler.GuestLogin)
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		// 需要认证的路由
		authed := apiV1.Group("/")
		authed.Use(middleware.AuthMiddleware(jwtManager, userRepo))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/users/me", userHandler.Me)

			authed.GET("/profile", profileHandler.GetProfile)
			authed.PUT("/profile", profileHandler.SaveProfile)

			authed.POST("/reports", reportHandler.Upload)
			authed.GET("/reports", reportHandler.List)
			authed.DELETE("/reports/:fileId", reportHandler.Delete)
			authed.GET("/reports/:fileId/download", reportHandler.DownloadURL)

			authed.POST("/assistant/message", assistantHandler.SendMessage)
			authed.GET("/assistant/history", assistantHandler.GetHistory)
			authed.DELETE("/assistant/history", assistantHandler.ClearHistory)

			authed.GET("/search", searchHandler.Search)
			authed.GET("/metrics/today", metricsHandler.Dashboard)
		}

		// Assistant WebSocket 路由：token 走路径参数
		r.GET("/assistant/ws/:token", assistantHandler.Handle)

		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager, userRepo), middleware.AdminAuthMiddleware())
		{
			admin.GET("/users/list", adminHandler.ListUsers)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费循环会随进程退出自然结束，无需单独关闭。
	log.Info("服务已优雅关闭")
}
