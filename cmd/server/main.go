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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/cache"
	"github.com/yourorg/options-backtester/internal/client"
	"github.com/yourorg/options-backtester/internal/config"
	"github.com/yourorg/options-backtester/internal/handler"
	"github.com/yourorg/options-backtester/internal/middleware"
	"github.com/yourorg/options-backtester/internal/repository"
	"github.com/yourorg/options-backtester/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	barRepo := repository.NewBarRepository(db, logger)
	runRepo := repository.NewRunRepository(db, logger)

	// Initialize upstream client
	marketDataClient := client.NewMarketDataClient(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, logger)

	// Initialize services
	barCache := cache.NewTTLCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	historyService := service.NewHistoryService(barRepo, marketDataClient, barCache, logger)
	backtestService := service.NewBacktestService(runRepo, historyService, logger)

	// Initialize handlers
	marketDataHandler := handler.NewMarketDataHandler(historyService, logger)
	backtestHandler := handler.NewBacktestHandler(backtestService, logger)

	// Set up HTTP server with Gin
	router := setupRouter(marketDataHandler, backtestHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	marketDataHandler *handler.MarketDataHandler,
	backtestHandler *handler.BacktestHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		marketData := v1.Group("/market-data")
		{
			marketData.GET("/bars", marketDataHandler.GetBars)
		}

		backtests := v1.Group("/backtests")
		{
			backtests.GET("", backtestHandler.ListBacktests)
			backtests.POST("", backtestHandler.CreateBacktest)
			backtests.GET("/:id", backtestHandler.GetBacktest)
		}

		v1.POST("/valuations", backtestHandler.ValuateStrategy)
	}

	return router
}
