package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/console/handler"
	"github.com/xela07ax/authconsole/internal/console/server"
	"github.com/xela07ax/authconsole/internal/console/service"
	"github.com/xela07ax/authconsole/internal/console/web"
	"github.com/xela07ax/authconsole/internal/infra"
	"github.com/xela07ax/authconsole/internal/infra/auth"
	"github.com/xela07ax/authconsole/internal/repository/postgres"
	"github.com/xela07ax/authconsole/internal/signals"
	"github.com/xela07ax/authconsole/internal/timefmt"
	"github.com/xela07ax/authconsole/internal/upstream"
	"go.uber.org/zap"
)

func main() {
	// .env необязателен: в контейнере всё приходит через окружение
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("console stopped with error", zap.Error(err))
	}
}

func run(cfg *infra.Config, logger *zap.Logger) error {
	appCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(reg)

	// 2. Журнал действий: PostgreSQL, если задан database.url, иначе zap
	var storage audit.Storage = audit.NewLogStore(logger, audit.DefaultLimit)
	if cfg.Database.URL != "" {
		dbCtx, dbCancel := context.WithTimeout(appCtx, 5*time.Second)
		pool, err := postgres.NewPool(dbCtx, cfg.Database)
		if err != nil {
			dbCancel()
			return err
		}
		defer pool.Close()

		err = postgres.Migrate(dbCtx, pool, logger)
		dbCancel()
		if err != nil {
			return err
		}
		storage = postgres.NewAuditRepo(pool)
		logger.Info("audit storage: postgres")
	}
	trail := audit.NewTrail(storage, logger, metrics)
	trail.Start()
	defer trail.Stop()

	// 3. Сигналы действий через Redis
	var notifier signals.Notifier = signals.Nop{}
	if rdb := signals.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(appCtx).Err(); err != nil {
			logger.Warn("redis is unreachable, action signals may be lost", zap.Error(err))
		}
		notifier = signals.NewPublisher(rdb, logger)
	}

	// 4. Клиент бэкенда авторизации (Rate Limit, Circuit Breaker, Retry)
	client := upstream.NewClient(cfg.Upstream, nil, logger)
	gateway := service.NewGateway(upstream.NewReliabilityWrapper(client, cfg.Upstream, metrics), trail, notifier, metrics, logger)

	// 5. Представление
	loc, err := cfg.Console.Location()
	if err != nil {
		return fmt.Errorf("console.timezone: %w", err)
	}
	renderer, err := web.NewRenderer(timefmt.New(loc), cfg.Console.SessionLifetimeDays)
	if err != nil {
		return err
	}

	// 6. Аутентификация операторов
	var (
		validator   auth.TokenValidator
		authService *service.AuthService
	)
	if cfg.Auth.Enabled {
		pub, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
		if err != nil {
			return err
		}
		priv, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
		if err != nil {
			return err
		}
		validator = auth.NewBaseValidator(pub)
		authService = service.NewAuthService(cfg.Auth.Operators, priv, cfg.Auth.TokenTTL)
	} else {
		logger.Warn("operator authentication is disabled, console is open")
	}

	// 7. Слои (Dependency Injection)
	auditService := service.NewAuditService(trail)
	srvHandler := server.NewConsoleServer(cfg, logger, validator,
		handler.NewAuthHandler(authService, renderer, cfg.Auth.CookieSecure, logger),
		handler.NewProxyHandler(gateway, logger),
		handler.NewAuditHandler(auditService, logger),
		handler.NewPagesHandler(
			service.NewOverviewService(gateway),
			service.NewUserService(gateway),
			service.NewSessionService(gateway),
			service.NewPasswordService(gateway),
			auditService,
			renderer,
			cfg.Auth.Enabled,
			logger,
		),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srvHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth console started",
			zap.String("addr", srv.Addr),
			zap.String("upstream", cfg.Upstream.BaseURL),
			zap.Bool("auth", cfg.Auth.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. Graceful Shutdown
	select {
	case <-appCtx.Done():
		logger.Info("auth console stopping...")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	logger.Info("auth console exited properly")
	return nil
}
