package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/mailcode/registrator/configs"
	"github.com/mailcode/registrator/internal/application/services"
	"github.com/mailcode/registrator/internal/core/ports"
	"github.com/mailcode/registrator/internal/infrastructure/db"
	"github.com/mailcode/registrator/internal/infrastructure/health"
	"github.com/mailcode/registrator/internal/infrastructure/httpserver"
	"github.com/mailcode/registrator/internal/infrastructure/rabbitmq"
	"github.com/mailcode/registrator/internal/infrastructure/redis"
	"github.com/mailcode/registrator/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting registrator...")

	// The server signs tokens; the mailer does not, so these are checked
	// here rather than enforced for every binary at config load.
	if cfg.JWT.Secret == "" || cfg.JWT.Issuer == "" || cfg.JWT.Audience == "" {
		logger.Fatal("JWT_SECRET, JWT_ISSUER and JWT_AUDIENCE must be set")
	}

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Initialize the mail queue publisher
	publisher, err := rabbitmq.NewPublisher(&cfg.RabbitMQ, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer publisher.Close()

	logger.Info("Connected to RabbitMQ successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Initialize repositories
	codeStore := repositories.NewCodeRedisRepository(redisClient, logger)
	userRepo := repositories.NewUserRepository(database, logger)
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	// Wire services
	tokenService := services.NewTokenService(&cfg.JWT, cfg.Code.TTL)

	registrationConfig := &services.RegistrationConfig{
		CodeTTL:    cfg.Code.TTL,
		CodeLength: cfg.Code.Length,
	}
	registrationService := services.NewRegistrationService(codeStore, userRepo, publisher, tokenService, registrationConfig, logger)

	rateLimiterConfig := &services.RateLimiterConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}
	rateLimiter := services.NewRateLimiterService(rateLimitRepo, rateLimiterConfig, logger)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
		health.NewAMQPHealthChecker(publisher),
	}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		RegistrationService: registrationService,
		RateLimiter:         rateLimiter,
		HealthCheckers:      hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
