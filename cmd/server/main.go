package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"event_marketplace/docs"
	_ "event_marketplace/internal/domain/booking"
	_ "event_marketplace/internal/domain/common"
	_ "event_marketplace/internal/domain/coupon"
	_ "event_marketplace/internal/domain/event"
	_ "event_marketplace/internal/domain/payment"
	"event_marketplace/internal/pkg/broker"
	"event_marketplace/internal/pkg/config"
	"event_marketplace/internal/pkg/locker"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/internal/pkg/registry"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/database"
	"event_marketplace/pkg/logger"
	"event_marketplace/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title Event Marketplace API
// @version 1.0
// @description 活动市场预订与支付事务引擎
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env 只在本地开发时存在
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.Init(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 存储
	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	sdb, err := database.NewSQLX(db)
	if err != nil {
		return err
	}

	collector := metrics.NewMetricsCollector(prometheus.DefaultRegisterer)
	go database.NewPoolMonitor(sqlDB, collector, database.PoolMonitorConfig{}, zlog).Run(ctx)

	// 2. 分布式锁：Redis 不可用时退化为进程内锁
	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		zlog.Warn("redis unavailable, using in-process locks", zap.Error(err))
	}
	var lk locker.Locker = locker.NewMemoryLocker()
	if rdb != nil {
		defer rdb.Close()
		lk = locker.NewRedisLocker(rdb)
	}

	// 3. 领域事件
	var publisher broker.Publisher = broker.NewLogPublisher(zlog)
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher := broker.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, zlog)
		defer amqpPublisher.Close()

		async := broker.NewAsyncPublisher(amqpPublisher, cfg.RabbitMQ.Workers, cfg.RabbitMQ.QueueSize, collector, zlog)
		async.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := async.Stop(stopCtx); err != nil {
				zlog.Warn("drain event queue", zap.Error(err))
			}
		}()
		publisher = async
	}

	// 4. HTTP
	gin.SetMode(cfg.Server.Mode)
	binding.EnableDecoderDisallowUnknownFields = true
	decimal.MarshalJSONWithoutQuotes = true

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	go cleanupLimiter(ctx, limiter, zlog)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(collector))
	r.Use(middleware.RateLimitMiddleware(limiter))

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 5. 模块
	if err := registry.InitModules(&registry.ModuleContext{
		DB:        db,
		SQLX:      sdb,
		Redis:     rdb,
		Router:    r,
		Config:    cfg,
		Logger:    zlog,
		Metrics:   collector,
		Tx:        txn.NewManager(db),
		Publisher: publisher,
		Locker:    lk,
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cleanupLimiter(ctx context.Context, limiter *middleware.IPRateLimiter, zlog *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := limiter.Cleanup(); n > 0 {
				zlog.Debug("rate limiter cleanup", zap.Int("removed", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
