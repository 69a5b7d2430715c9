package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"djbot/internal/config"
	"djbot/internal/dj"
	"djbot/internal/djapi"
	"djbot/internal/handler"
	"djbot/internal/health"
	"djbot/internal/repository/postgres"
	"djbot/internal/scheduler"
	"djbot/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting DJ Bot",
		zap.String("dj_api_url", cfg.DJ.APIURL),
		zap.Duration("status_poll", cfg.DJ.StatusPoll),
		zap.Duration("queue_drain", cfg.DJ.QueueDrain),
	)

	quickActions, err := config.LoadQuickActions(cfg.DJ.QuickActionsFile)
	if err != nil {
		logger.Fatal("Failed to load quick actions", zap.Error(err))
	}

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	interactionRepo := postgres.NewInteractionRepo(db)

	// Initialize services
	prefService := service.NewPreferenceService(userRepo, logger)
	authService := service.NewAuthService(userRepo, prefService, cfg.BotPassword, logger)
	statsService := service.NewStatsService(interactionRepo, cfg.Database.RetentionDays, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Handler error", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// DJ core
	client := djapi.NewClient(cfg.DJ.APIURL, cfg.DJ.APITimeout, logger)
	clock := scheduler.SystemClock{}
	registry := dj.NewRegistry()
	presenter := handler.NewChatPresenter(bot, cfg.DJ.APIURL, quickActions, logger)
	monitor := dj.NewMonitor(registry, client, presenter, clock, cfg.DJ.WarningThreshold, logger)
	drainer := dj.NewDrainer(registry, client, presenter, interactionRepo, monitor, clock, logger)

	// Initialize handler
	h := handler.NewHandler(bot, handler.Deps{
		AuthService:  authService,
		PrefService:  prefService,
		StatsService: statsService,
		Registry:     registry,
		Monitor:      monitor,
		Drainer:      drainer,
		Backend:      client,
		QuickActions: quickActions,
		IsAdmin:      cfg.IsAdmin,
	}, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	start := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	start(func() { monitor.Run(ctx, cfg.DJ.StatusPoll) })
	start(func() { drainer.Run(ctx, cfg.DJ.QueueDrain) })
	start(func() { runCleanupJob(ctx, statsService, clock, logger) })

	if cfg.HealthAddr != "" {
		router := health.NewRouter(db, registry, logger)
		start(func() {
			if err := health.Serve(ctx, cfg.HealthAddr, router, logger); err != nil {
				logger.Error("Health server failed", zap.Error(err))
			}
		})
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown: stop taking updates, then let loops and in-flight requests finish
	bot.Stop()
	cancel()
	wg.Wait()

	logger.Info("Bot stopped gracefully")
}

// newLogger builds a production logger at the configured level
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// runCleanupJob prunes the interaction log at startup and then every 24 hours
func runCleanupJob(ctx context.Context, statsService *service.StatsService, clock scheduler.Clock, logger *zap.Logger) {
	if err := statsService.CleanupOldData(); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	scheduler.Every(ctx, clock, 24*time.Hour, func(context.Context) {
		logger.Info("Running scheduled cleanup")
		if err := statsService.CleanupOldData(); err != nil {
			logger.Error("Failed to run scheduled cleanup", zap.Error(err))
		}
	})
	logger.Info("Cleanup job stopped")
}
