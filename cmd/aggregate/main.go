package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/aggregate"
	"github.com/Dan9191/virtualcard/internal/aggregate/ratelimit"
	"github.com/Dan9191/virtualcard/internal/config"
	"github.com/Dan9191/virtualcard/internal/integrations/cardapi"
	"github.com/Dan9191/virtualcard/internal/integrations/txapi"
	"github.com/Dan9191/virtualcard/internal/integrations/userapi"
	"github.com/Dan9191/virtualcard/internal/middleware"
	"github.com/Dan9191/virtualcard/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewAggregateConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the spend limiter and its minute sweep
	limiter := ratelimit.New(cfg.MaxSpendsPerMinute)
	if err := limiter.Start(cfg.RateLimitInterval); err != nil {
		logger.Fatalf("Failed to start rate limiter: %v", err)
	}
	defer limiter.Stop()

	// Initialize layers
	cards := cardapi.NewClient(cfg.CardServiceURL, logger)
	transactions := txapi.NewClient(cfg.TransactionServiceURL, logger)
	users := userapi.NewClient(cfg.UserServiceURL, logger)
	alerts := email.NewSender(cfg, logger)
	svc := aggregate.NewService(cards, transactions, limiter, alerts, logger, cfg.MaxSpendsPerMinute)
	auth := aggregate.NewAuthenticator(users, cfg.JWTSecret, cfg.JWTExpiry, logger)
	h := aggregate.NewHandler(svc, auth)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	// Public login route
	h.RegisterLogin(r)
	// Protected aggregate routes
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	h.Register(protected)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting aggregate service on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
