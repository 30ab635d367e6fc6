package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/spotexchange/internal/exchange/application"
	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
	"github.com/wyfcoding/spotexchange/internal/exchange/infrastructure/messaging"
	"github.com/wyfcoding/spotexchange/internal/exchange/infrastructure/persistence/mysql"
	exchangehttp "github.com/wyfcoding/spotexchange/internal/exchange/interfaces/http"
	"github.com/wyfcoding/spotexchange/pkg/cache"
	"github.com/wyfcoding/spotexchange/pkg/config"
	"github.com/wyfcoding/spotexchange/pkg/db"
	"github.com/wyfcoding/spotexchange/pkg/idgen"
	"github.com/wyfcoding/spotexchange/pkg/logger"
	"github.com/wyfcoding/spotexchange/pkg/metrics"
	"github.com/wyfcoding/spotexchange/pkg/middleware"
	"github.com/wyfcoding/spotexchange/pkg/mq"
	"github.com/wyfcoding/spotexchange/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/exchange/config.toml", "path to config file")
	workerID := flag.Int64("worker-id", 0, "snowflake worker id")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "starting exchange service",
		"service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment)

	// 数据库
	gdb, err := db.Init(cfg.Database)
	if err != nil {
		logger.Fatal(ctx, "failed to init database", "error", err)
	}
	if cfg.Database.AutoMigrate {
		if err := gdb.AutoMigrate(&domain.Order{}, &domain.Trade{}); err != nil {
			logger.Fatal(ctx, "failed to migrate schema", "error", err)
		}
	}

	// Redis
	redisCache, err := cache.New(cfg.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}
	defer redisCache.Close()

	// ID 生成
	snowflake, err := idgen.NewSnowflake(*workerID)
	if err != nil {
		logger.Fatal(ctx, "invalid worker id", "error", err)
	}

	// Kafka 成交事件
	var publisher application.EventPublisher
	if cfg.Kafka.Enabled {
		producer := mq.NewProducer(cfg.Kafka, cfg.Kafka.TradeTopic)
		kafkaPublisher := messaging.NewKafkaTradePublisher(producer)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// 仓储与领域服务
	orderRepo := mysql.NewOrderRepository(gdb)
	tradeRepo := mysql.NewTradeRepository(gdb)
	runner := mysql.NewEpisodeRunner(gdb)
	engine := domain.NewMatchingEngine(func() string {
		return snowflake.NextString("TRD")
	}, logger.Get())

	// 应用服务
	commandSvc := application.NewExchangeCommandService(
		runner, engine, orderRepo, publisher,
		func() string { return snowflake.NextString("ORD") },
		cfg.Market.Symbol,
	)
	querySvc := application.NewExchangeQueryService(orderRepo, tradeRepo, cfg.Market.Symbol)
	marketSvc := application.NewMarketQueryService(
		tradeRepo, orderRepo, redisCache,
		time.Duration(cfg.Market.SummaryCacheTTL)*time.Second,
		cfg.Market.Symbol,
	)

	// HTTP
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinTrace(),
		middleware.GinLogging(),
		middleware.GinRecovery(),
		middleware.GinCORS(),
	)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewLimiter(redisCache.GetClient(), cfg.RateLimit.QPS, cfg.RateLimit.Burst)
		router.Use(middleware.GinRateLimit(limiter))
	}

	handler := exchangehttp.NewHandler(commandSvc, querySvc, marketSvc)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.StartHTTPServer(cfg.Metrics)
		logger.Info(ctx, "metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	go func() {
		logger.Info(ctx, "http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	// 优雅退出
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info(ctx, "shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "metrics server shutdown failed", "error", err)
		}
	}
	logger.Info(ctx, "exchange service stopped")
}
