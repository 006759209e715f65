package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/ustax/src/config"
	"github.com/username/ustax/src/database"
	"github.com/username/ustax/src/handlers"
	"github.com/username/ustax/src/logger"
	"github.com/username/ustax/src/security"
	"github.com/username/ustax/src/services"
	"github.com/username/ustax/src/utils"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Tax engine server starting...")

	if config.Cfg.CountryDataPath != "" {
		if err := utils.InitCountryData(config.Cfg.CountryDataPath); err != nil {
			logger.L.Error("Failed to load country data", "error", err)
		}
	}

	logger.L.Info("Loading tax rule sets...", "rulesDir", config.Cfg.RulesDir)
	catalog, err := services.LoadCatalog(config.Cfg.RulesDir)
	if err != nil {
		logger.L.Error("Tax rule sets failed validation", "error", err)
		os.Exit(1)
	}
	logger.L.Info("Tax rule sets loaded.", "years", catalog.Years())
	if _, err := catalog.Get(config.Cfg.DefaultTaxYear); err != nil {
		logger.L.Warn("Default tax year has no rule set", "year", config.Cfg.DefaultTaxYear, "latest", catalog.Latest())
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(config.Cfg.ResultCacheTTL, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	taxService := services.NewTaxService(catalog, database.DB, resultCache, config.Cfg.ResultCacheTTL)
	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	taxHandler := handlers.NewTaxHandler(taxService)

	logger.L.Info("Configuring routes...")
	router := handlers.NewRouter(taxHandler, authService, handlers.RouterOptions{
		AuthRequired:   config.Cfg.AuthRequired,
		AllowedOrigins: config.Cfg.AllowedOrigins,
		Limiter:        rate.NewLimiter(rate.Limit(config.Cfg.RateLimitPerSecond), config.Cfg.RateLimitBurst),
		MaxBodyBytes:   config.Cfg.MaxRequestBodyBytes,
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.L.Info("Shutdown signal received, draining connections...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.L.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	<-drained
	if err := database.DB.Close(); err != nil {
		logger.L.Error("Failed to close database", "error", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
