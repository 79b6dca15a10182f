package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"profileimport/internal/admin"
	"profileimport/internal/api"
	"profileimport/internal/config"
	"profileimport/internal/credpool"
	"profileimport/internal/db"
	"profileimport/internal/enrich"
	"profileimport/internal/importer"
	"profileimport/internal/logger"
	"profileimport/internal/normalizer"
	"profileimport/internal/provider"
	"profileimport/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// customRecovery is a middleware that recovers from panics and handles http.ErrAbortHandler gracefully.
func customRecovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					log.Warn("Client connection aborted", "path", c.Request.URL.Path)
					c.Abort()
					return
				}

				log.Error("Panic recovered",
					"error", recovered,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

func main() {
	// Load configuration
	cfg, warning, err := config.LoadConfig("config.yaml")
	if err != nil {
		// Use a temporary logger for startup errors
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(cfg.Debug)
	log.Info("Logger initialized", "debug_mode", cfg.Debug)
	if warning != "" {
		log.Warn(warning)
	}

	// Initialize database
	database, err := db.NewService(cfg.Database)
	if err != nil {
		log.Error("Error initializing database", "error", err)
		os.Exit(1)
	}
	log.Info("Database initialized", "type", cfg.Database.Type)

	// Start the scheduler
	sched := scheduler.NewScheduler(database, cfg.Scheduler, log)
	if err := sched.Start(); err != nil {
		log.Error("Error starting scheduler", "error", err)
		os.Exit(1)
	}
	log.Info("Scheduler started")

	// Build the credential pool over the configured providers
	providerNames := make([]string, 0, len(cfg.Importer.Providers))
	for _, p := range cfg.Importer.Providers {
		providerNames = append(providerNames, p.Name)
	}
	pool, err := credpool.New(database, providerNames, cfg.Importer.Cooldown.Std(), log)
	if err != nil {
		log.Error("Error initializing credential pool", "error", err)
		os.Exit(1)
	}

	adapters := provider.FromConfig(cfg.Importer, log)
	norm := normalizer.New(log)
	importSvc := importer.New(pool, adapters, norm, database, cfg.Quota.Tiers, cfg.Importer.OverallDeadline.Std(), cfg.Importer.SessionRetention.Std(), log)

	// Enrichment is optional: without an API key the endpoints report 503.
	var enrichSvc api.EnrichService
	var closeGen func() error
	if cfg.Enrichment.APIKey != "" {
		gen, closer, err := enrich.NewGeminiGenerator(context.Background(), cfg.Enrichment.APIKey, cfg.Enrichment.Model)
		if err != nil {
			log.Error("Error creating generation client", "error", err)
			os.Exit(1)
		}
		closeGen = closer
		enrichSvc = enrich.NewService(gen, log)
	} else {
		log.Warn("No generation API key configured, enrichment endpoints disabled")
	}

	// Create a Gin router
	router := gin.New()
	// Use our custom recovery middleware instead of the default one.
	router.Use(customRecovery(log))

	// If debug mode is enabled, add the logger middleware
	if cfg.Debug {
		// This uses the default gin logger, which is fine for development.
		router.Use(gin.Logger())
	}

	handler := api.NewHandler(importSvc, enrichSvc, pool, providerNames, log)
	api.SetupRoutes(router, database, handler)
	admin.SetupRoutes(router, database, cfg)

	// Create and start the main server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Stop background tasks before draining in-flight requests
	sched.Stop()
	pool.Close()
	if closeGen != nil {
		if err := closeGen(); err != nil {
			log.Warn("Error closing generation client", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exiting")
}
