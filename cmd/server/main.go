package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teahouse/internal/clock"
	"teahouse/internal/config"
	"teahouse/internal/handler"
	"teahouse/internal/infrastructure/cache"
	"teahouse/internal/infrastructure/database"
	"teahouse/internal/infrastructure/metrics"
	"teahouse/internal/infrastructure/mq"
	"teahouse/internal/job"
	"teahouse/internal/logger"
	"teahouse/internal/repository"
	"teahouse/internal/service"
	"teahouse/pkg/idgen"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	configPath := os.Getenv("TEAHOUSE_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg := config.LoadConfig(configPath)

	logger.Init(&cfg.Logger)
	defer logger.Sync()

	// 初始化 ID 生成器
	if err := idgen.Init(1); err != nil {
		logger.Fatal("初始化ID生成器失败", zap.Error(err))
	}

	loc, err := cfg.Billing.Location()
	if err != nil {
		logger.Fatal("加载时区失败", zap.Error(err))
	}
	defaultRates, err := cfg.Billing.RateTable()
	if err != nil {
		logger.Fatal("默认费率无效", zap.Error(err))
	}

	db, err := database.InitMySQL(&cfg.MySQL)
	if err != nil {
		logger.Fatal("初始化 MySQL 失败", zap.Error(err))
	}

	redisClient, err := cache.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("初始化 Redis 失败", zap.Error(err))
	}
	defer redisClient.Close()

	producer, err := mq.InitKafka(&cfg.Kafka)
	if err != nil {
		logger.Fatal("初始化 Kafka 失败", zap.Error(err))
	}
	defer producer.Close()

	m := metrics.New("teahouse", nil)
	clk := clock.SystemClock{Location: loc}

	// 服务
	roomRepo := repository.NewRoomRepository(db)
	roomLocker := service.NewRedisRoomLocker(redisClient, cfg.Business.LockTimeout())
	rateService := service.NewRateService(db, roomRepo, roomLocker, cache.NewRateCache(redisClient, cfg.Business.RateCacheTTL()), defaultRates, m)
	roomService := service.NewRoomService(db, roomRepo, rateService, roomLocker, clk, m)
	checkoutService := service.NewCheckoutService(db, roomService, cfg.Kafka.Topic.Checkout)
	reportService := service.NewReportService(db, cfg.Kafka.Topic.DailyReport)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := roomService.EnsureRooms(ctx, cfg.Rooms); err != nil {
		logger.Fatal("初始化房间失败", zap.Error(err))
	}
	if _, err := rateService.Current(ctx); err != nil {
		logger.Fatal("加载费率失败", zap.Error(err))
	}

	// 启动后台任务
	outboxSender := job.NewOutboxSender(db, producer, clk, m, job.OutboxOptions{
		Interval:      cfg.Business.OutboxInterval(),
		BatchSize:     cfg.Business.OutboxBatchSize,
		MaxRetryCount: cfg.Business.MaxRetryCount,
	})
	go outboxSender.Start(ctx)

	dailyReportJob := job.NewDailyReportJob(reportService, clk, cfg.Business.DailyReportHour, time.Minute)
	go dailyReportJob.Start(ctx)

	// 设置路由
	h := handler.NewHandler(handler.Services{
		Room:     roomService,
		Checkout: checkoutService,
		Rate:     rateService,
		Product:  service.NewProductService(db),
		Report:   reportService,
	}, loc)
	router := handler.SetupRouter(h, m, cfg.Server.Mode)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("服务启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}
