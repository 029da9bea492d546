package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/dispatchmem"
	"dispatch/internal/adapters/out/postgres/ledgerrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/rabbitmq"
	"dispatch/internal/adapters/out/vendorconfig"
	"dispatch/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDB(configs)

	vendorConfig, err := vendorconfig.LoadProvider(configs.VendorConfigPath)
	if err != nil {
		log.Fatalf("failed to load vendor config: %v", err)
	}

	publisher, closePublisher := createPublisher(configs, logger)
	defer closePublisher()

	dispatchIndex := dispatchmem.NewIndex(configs.AgentLivenessWindow)

	app := cmd.NewCompositionRoot(configs, gormDB, dispatchIndex, vendorConfig, publisher, logger)

	rebuilt, err := app.RebuildDispatchPool(context.Background())
	if err != nil {
		log.Fatalf("failed to rebuild dispatch pool: %v", err)
	}
	logger.Info("dispatch pool rebuilt", "orders", rebuilt)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	return cmd.Config{
		HTTPPort:            envOr("HTTP_PORT", "8080"),
		DBHost:              envOr("DB_HOST", "localhost"),
		DBPort:              envOr("DB_PORT", "5432"),
		DBUser:              envOr("DB_USER", "postgres"),
		DBPassword:          envOr("DB_PASSWORD", "postgres"),
		DBName:              envOr("DB_NAME", "dispatch"),
		DBSslMode:           envOr("DB_SSLMODE", "disable"),
		AmqpURL:             os.Getenv("AMQP_URL"),
		VendorConfigPath:    envOr("VENDOR_CONFIG_PATH", "configs/vendors.yaml"),
		AgentLivenessWindow: envDuration("AGENT_LIVENESS_WINDOW", 2*time.Minute),
		AssignmentTimeout:   envDuration("ASSIGNMENT_TIMEOUT", 10*time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration in %s: %v", key, err)
	}
	return d
}

func mustOpenDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.StatusChangeDTO{},
		&ledgerrepo.LedgerEntryDTO{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createPublisher(configs cmd.Config, logger *slog.Logger) (ports.TransitionPublisher, func()) {
	if configs.AmqpURL == "" {
		logger.Info("AMQP_URL not set, logging transitions instead of publishing")
		return cmd.NewLogTransitionPublisher(logger), func() {}
	}

	conn, err := rabbitmq.Connect(configs.AmqpURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}

	return rabbitmq.NewTransitionPublisher(conn), func() { conn.Close() }
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.HideBanner = true

	app.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("web server shutdown failed: %v", err)
	}
}
