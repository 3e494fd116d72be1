package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/logging"
	"CryptoSignalBot/internal/metrics"
	"CryptoSignalBot/internal/models"
	"CryptoSignalBot/internal/notify"
	"CryptoSignalBot/internal/operations/exchange"
	"CryptoSignalBot/internal/operations/runner"
	"CryptoSignalBot/internal/repositories"
	"CryptoSignalBot/internal/services/strategy"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: config.yaml in the working directory)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting signal engine",
		zap.String("venue", cfg.Venue.Name),
		zap.Strings("symbols", cfg.Symbols),
		zap.String("environment", cfg.App.Environment),
	)

	// Initialize the market data venue
	source, err := exchange.New(cfg.Venue, logger)
	if err != nil {
		logger.Fatal("venue setup failed", zap.Error(err))
	}

	// Initialize the signal journal when a database is configured
	var signalRepo *repositories.SignalRepository
	if cfg.Database.Enabled {
		db, err := setupDatabase(cfg.Database)
		if err != nil {
			logger.Fatal("database setup failed", zap.Error(err))
		}
		signalRepo = repositories.NewSignalRepository(db)
		logger.Info("signal journal enabled",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName),
		)
	}

	notifier, err := buildNotifier(cfg.Telegram, logger)
	if err != nil {
		logger.Fatal("notifier setup failed", zap.Error(err))
	}

	// Initialize strategy components
	manager := strategy.NewStrategyManager(logger)
	manager.Register(strategy.NewThreeScreenStrategy(cfg.Strategy, logger))

	if cfg.Metrics.Addr != "" {
		metrics.Serve(cfg.Metrics.Addr)
		logger.Info("metrics listener started", zap.String("addr", cfg.Metrics.Addr))
	}

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.New(*cfg, source, manager, notifier, signalRepo, logger).Run(ctx)

	logger.Info("shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Auto migrate the signal journal schema
	if err := db.AutoMigrate(&models.SignalModel{}); err != nil {
		return nil, fmt.Errorf("migrate signals table: %w", err)
	}

	return db, nil
}

// buildNotifier assembles the delivery chain: the log sink is always on,
// Telegram joins it when a bot token is configured.
func buildNotifier(cfg config.TelegramConfig, logger *zap.Logger) (notify.Notifier, error) {
	sinks := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.Token != "" {
		telegram, err := notify.NewTelegramNotifier(cfg, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, telegram)
	}
	return sinks, nil
}
