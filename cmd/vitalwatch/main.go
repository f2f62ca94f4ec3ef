package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitalwatch/internal/analyzer"
	"vitalwatch/internal/config"
	"vitalwatch/internal/database"
	"vitalwatch/internal/httpapi"
	"vitalwatch/internal/logger"
	vwmqtt "vitalwatch/internal/mqtt"
	"vitalwatch/internal/repository"
	"vitalwatch/internal/service"
	"vitalwatch/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 本地开发加载 .env（不存在则忽略）
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "vitalwatch")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	pingers := map[string]httpapi.Pinger{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	// DB 未就绪时回退到内存仓库，摄取链路在本地联调仍然可用
	var samples repository.SampleRepository
	var alerts repository.AlertRepository
	if cfg.DBEnabled {
		if db, err := database.NewPostgresDB(&cfg.Database); err == nil {
			log.Info("DB enabled for vitalwatch")
			samples = repository.NewPostgresSampleRepository(db)
			alerts = repository.NewPostgresAlertRepository(db)
			pingers["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
			defer database.Close(db)
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if samples == nil {
		samples = repository.NewMemorySampleRepository()
		alerts = repository.NewMemoryAlertRepository()
	}

	// 可选：MQTT retained 指令推送（默认禁用，设备轮询 registry）
	var publisher service.CommandPublisher
	if cfg.MQTT.Enabled {
		if client, err := vwmqtt.NewClient(&cfg.MQTT); err == nil {
			publisher = client
			defer client.Disconnect()
			log.Info("MQTT buzzer push enabled", zap.String("broker", cfg.MQTT.Broker))
		} else {
			log.Warn("MQTT enabled but connection failed, buzzer push disabled", zap.Error(err))
		}
	}

	actuators := service.NewActuatorRegistry(kv, publisher, cfg.MQTT.TopicPrefix, log)

	opts := []service.IngestOption{
		service.WithAlertStream(store.NewRedisStreamPublisher(redisClient, cfg.Ingest.AlertStream)),
	}
	if cfg.Ingest.LatestCacheTTL > 0 {
		opts = append(opts, service.WithLatestCache(kv, time.Duration(cfg.Ingest.LatestCacheTTL)*time.Second))
	}
	if cfg.Risk.Enabled && cfg.Risk.BaseURL != "" {
		riskTimeout := time.Duration(cfg.Risk.TimeoutSeconds) * time.Second
		opts = append(opts, service.WithRiskScorer(
			service.NewRiskClient(cfg.Risk.BaseURL, cfg.Risk.APIKey, riskTimeout, log),
			riskTimeout,
		))
		log.Info("risk scoring enabled", zap.String("base_url", cfg.Risk.BaseURL))
	}

	ingest := service.NewIngestService(
		samples, alerts, actuators,
		analyzer.New(cfg.Analyzer.SampleRateHz),
		cfg.Ingest.WriteAttempts,
		log,
		opts...,
	)
	query := service.NewQueryService(samples, alerts, log)

	handler := httpapi.NewTelemetryHandler(ingest, query, actuators, pingers, log)
	router := httpapi.NewRouter(log)
	router.RegisterTelemetryRoutes(handler)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("vitalwatch listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErrChan:
		log.Fatal("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}

	log.Info("vitalwatch stopped")
}
