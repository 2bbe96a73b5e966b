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

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/rheyna/duncord/internal/commands"
	"github.com/rheyna/duncord/internal/config"
	"github.com/rheyna/duncord/pkg/database"
	"github.com/rheyna/duncord/pkg/database/repository"
	"github.com/rheyna/duncord/pkg/logging"
	"github.com/rheyna/duncord/pkg/ranking/handler"
	"github.com/rheyna/duncord/pkg/ranking/service"
)

func main() {
	if err := initializeApplication(); err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}
}

// initializeApplication handles the complete application initialization process
func initializeApplication() error {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		// Continue execution as .env file might not exist in production
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	harvestCfg, err := config.NewHarvestConfig()
	if err != nil {
		return fmt.Errorf("failed to load harvest config: %w", err)
	}

	db, err := database.NewGormDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Get the underlying *sql.DB for Close() method
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	defer sqlDB.Close()

	loggerFactory := initializeCentralizedLogging(db)

	// Wire the harvest pipeline: client, store, sync service
	client := handler.NewClientWithConfig(
		harvestCfg.ClientConfig(cfg.RankingBaseURL),
		loggerFactory.CreateLogger("client"),
	)
	store := repository.NewRecordStore(db)
	syncService := service.NewSyncService(
		store, store, client,
		harvestCfg.Categories,
		harvestCfg.LinkageConfig(),
		loggerFactory.CreateLogger("sync"),
	)

	// Schedule periodic harvest passes
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncCron, func() {
		if err := syncService.SyncAll(); err != nil {
			loggerFactory.CreateLogger("sync").Error("Scheduled harvest failed", err, nil)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule harvest cron %q: %w", cfg.SyncCron, err)
	}
	scheduler.Start()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	commands.InitializeRankingCommands(db, syncService, cfg)
	dg.AddHandler(commands.MessageHandler)

	healthServer := startHealthCheckServer(cfg.HealthAddr, sqlDBPinger(db))

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Println("Bot is running. Press CTRL-C to exit.")
	log.Printf("Health check endpoint available at http://localhost%s/health", cfg.HealthAddr)

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Println("Shutting down gracefully...")

	shutdownHealthServer(healthServer)

	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(30 * time.Second):
		log.Println("Timed out waiting for running harvest to finish")
	}

	dg.Close()

	log.Println("Application shutdown complete")
	return nil
}

// initializeCentralizedLogging sets up the database-backed logging system
func initializeCentralizedLogging(db *gorm.DB) logging.LoggerFactory {
	logRepo := repository.NewHarvestLogRepository(db)
	loggerFactory := logging.NewDatabaseLoggerFactory(logRepo)
	logging.SetGlobalLoggerFactory(loggerFactory)

	systemLogger := loggerFactory.CreateLogger("system")
	systemLogger.Info("Centralized logging system initialized successfully", map[string]interface{}{
		"database_connected": true,
		"logger_type":        "database",
	})
	return loggerFactory
}

// sqlDBPinger adapts the gorm handle to the health check probe
func sqlDBPinger(db *gorm.DB) func() bool {
	return func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx) == nil
	}
}

var systemStart = time.Now()

// startHealthCheckServer starts the HTTP server for health checks
func startHealthCheckServer(addr string, dbHealthy func() bool) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ok := dbHealthy()
		status := "healthy"
		code := http.StatusOK
		if !ok {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{
			"status": "%s",
			"uptime": "%s",
			"database_connected": %t,
			"start_time": "%s"
		}`, status, time.Since(systemStart).String(), ok, systemStart.Format(time.RFC3339))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Starting health check server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Health check server error: %v", err)
		}
	}()

	return server
}

// shutdownHealthServer gracefully shuts down the health check server
func shutdownHealthServer(server *http.Server) {
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Health server shutdown error: %v", err)
	} else {
		log.Println("Health check server shutdown complete")
	}
}
