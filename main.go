package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/cache"
	"github.com/lelangtech/pricewatch-engine/pkg/config"
	"github.com/lelangtech/pricewatch-engine/pkg/database"
	"github.com/lelangtech/pricewatch-engine/pkg/handlers"
	"github.com/lelangtech/pricewatch-engine/pkg/llm"
	"github.com/lelangtech/pricewatch-engine/pkg/logging"
	"github.com/lelangtech/pricewatch-engine/pkg/middleware"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
	"github.com/lelangtech/pricewatch-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("ai_model", cfg.AI.Model),
		zap.String("timezone", cfg.Scheduler.Timezone))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// golang-migrate needs database/sql; reuse the pool instead of opening a
	// second connection.
	migrationDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	dashboardCache := cache.New(redisClient, logger)

	chatClient, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Repositories
	scheduleRepo := repositories.NewScheduleRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	salesRepo := repositories.NewVehicleSalesRepository(db)
	runLogRepo := repositories.NewRunLogRepository(db)
	sourceRepo := repositories.NewDataSourceRepository(db)
	paramRepo := repositories.NewDataParameterRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Services
	tokenService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry())
	authMiddleware := auth.NewMiddleware(tokenService, logger)
	authService := services.NewAuthService(userRepo, tokenService, logger)

	scheduleService := services.NewScheduleConfigService(scheduleRepo, logger)
	estimator := services.NewPriceEstimator(chatClient, logger)
	historical := services.NewHistoricalPriceService(salesRepo, logger)
	runLogger := services.NewRunLoggerService(runLogRepo, logger)
	prediction := services.NewPredictionService(scheduleService, estimator, historical, sourceRepo, paramRepo, vehicleRepo, runLogger, logger)
	dashboard := services.NewDashboardService(vehicleRepo, runLogRepo, dashboardCache, logger)

	if err := authService.SeedAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("Failed to load scheduler timezone", zap.Error(err))
	}
	scheduler := services.NewScheduler(services.SchedulerOptions{
		PollInterval: cfg.Scheduler.PollInterval(),
		Location:     location,
		Workers:      cfg.Scheduler.Workers,
	}, scheduleService, vehicleRepo, sourceRepo, paramRepo, estimator, historical, runLogger, logger)

	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewVehicleHandler(vehicleRepo, prediction, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewScheduleHandler(scheduleService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDashboardHandler(dashboard, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDataSourceHandler(sourceRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDataParameterHandler(paramRepo, logger).RegisterRoutes(mux, authMiddleware)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger)(mux),
	}

	go func() {
		logger.Info("Starting pricewatch-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
