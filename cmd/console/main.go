package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xela07ax/manageros-console/internal/console/handler"
	"github.com/xela07ax/manageros-console/internal/console/server"
	"github.com/xela07ax/manageros-console/internal/console/service"
	"github.com/xela07ax/manageros-console/internal/evaluator"
	"github.com/xela07ax/manageros-console/internal/infra"
	"github.com/xela07ax/manageros-console/internal/infra/auth"
	"github.com/xela07ax/manageros-console/internal/repository/postgres"

	"github.com/avast/retry-go/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 2. PostgreSQL
	if cfg.Database.URL == "" {
		logger.Fatal("database.url (DATABASE_URL) is required")
	}
	db, err := postgres.Open(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnLifetime)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	repo := postgres.New(db)

	// При старте в Docker Compose база может подниматься дольше консоли,
	// поэтому пингуем с ретраями, а не падаем с первого раза.
	r := retry.New(
		retry.Attempts(5),
		retry.Delay(2*time.Second),
	)
	err = r.Do(func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return repo.Ping(pingCtx)
	})
	if err != nil {
		logger.Fatal("Database unreachable", zap.Error(err))
	}

	// 3. Redis (Pub/Sub сигналы + кэш статистики)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// Redis не критичен для чтения правил, но без него не будет сигналов и кэша
		logger.Warn("Redis unreachable, signals and stats cache degraded", zap.Error(err))
	}

	// 4. Ключи RS256
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("Failed to parse public key", zap.Error(err))
	}
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("Failed to parse private key", zap.Error(err))
	}
	validator := auth.NewBaseValidator(publicKey)

	// 5. Метрики
	reg := prometheus.NewRegistry()
	metrics := infra.NewMetrics(reg)

	// Экспортируем метрики на отдельном порту, чтобы не светить их наружу
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		logger.Info("Metrics listener started", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics listener failed", zap.Error(err))
		}
	}()

	// 6. Сборка слоев (Dependency Injection)
	eval := evaluator.New(repo, repo, repo, logger)

	ruleService := service.NewRuleService(repo, rdb, logger)
	exceptionService := service.NewExceptionService(repo, rdb, logger)
	evaluationService := service.NewEvaluationService(eval, rdb, metrics, cfg.Evaluator, logger)
	statsService := service.NewStatsService(repo, rdb, metrics, cfg.Stats, logger)
	authService := service.NewAuthService(repo, validator, privateKey, cfg.Auth.TokenTTL)

	srvHandler := server.NewConsoleServer(
		cfg,
		logger,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewRuleHandler(ruleService),
		handler.NewExceptionHandler(exceptionService),
		handler.NewEvaluationHandler(evaluationService),
		handler.NewDashboardHandler(statsService),
	)

	// 7. HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srvHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Console API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("Console API stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Console API exited properly")
}
