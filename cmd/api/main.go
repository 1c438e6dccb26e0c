package main

import (
	"context"
	"fmt"
	"os"

	"kopilka/internal/config"
	"kopilka/internal/database"
	"kopilka/internal/export"
	"kopilka/internal/logger"
	"kopilka/internal/parser"
	"kopilka/internal/server"
	"kopilka/internal/validator"
)

// @title           Kopilka API
// @version         1.0
// @description     Shared household budget: members, categories, budgets, reminders and reports.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if cfg.MigrateOnStart || cfg.DBDriver == "sqlite" {
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	validator.Register()
	opts := server.OptionsFromConfig(cfg)

	if cfg.GeminiAPIKey != "" {
		p, err := parser.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ParserTimeout)
		if err != nil {
			return fmt.Errorf("failed to create text parser: %w", err)
		}
		opts.Parser = p
	} else {
		log.Warn("GEMINI_API_KEY not set, free-text transactions are disabled")
	}

	if cfg.ExportBucket != "" {
		archiver, err := export.NewGCSArchiver(ctx, cfg.ExportBucket)
		if err != nil {
			return fmt.Errorf("failed to create export archiver: %w", err)
		}
		defer archiver.Close()
		opts.Archiver = archiver
	}

	if cfg.ServiceAPIKey == "" {
		log.Warn("SERVICE_API_KEY not set, tooling and frontend calls will be rejected")
	}

	router := server.NewRouter(dbManager.DB(), opts)

	log.Infof("Starting Kopilka server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}
