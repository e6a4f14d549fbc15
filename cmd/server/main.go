package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedback-backend/internal/analytics"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/clock"
	"feedback-backend/internal/config"
	"feedback-backend/internal/database"
	"feedback-backend/internal/feedback"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/repository/sqlstore"
	"feedback-backend/internal/sentiment"
	"feedback-backend/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer logger.Sync()

	stores, closeStores, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStores()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := stores.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to create indexes", zap.Error(err))
	}
	cancel()

	clk := clock.New()
	sessions := session.NewStore(stores.Sessions, cfg.JWTSecret, cfg.SessionTTL, clk, logger)
	gateway := auth.NewGateway(stores.Users, stores.Admins, sessions, clk, logger)

	if cfg.AdminUsername != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := gateway.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			logger.Warn("Failed to seed admin account", zap.Error(err))
		}
		cancel()
	} else {
		logger.Warn("ADMIN_USERNAME not set, admin login depends on an existing account")
	}

	feedbackService := feedback.NewService(
		gateway,
		stores.Users,
		stores.Feedback,
		newClassifier(cfg, logger),
		newNotifier(cfg, logger),
		clk,
		cfg.ClassifierTimeout,
		logger,
	)
	analyticsService := analytics.NewService(gateway, stores.Users, stores.Feedback, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(registry); err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(gateway, logger),
		Feedback:       handlers.NewFeedbackHandler(feedbackService, logger),
		Admin:          handlers.NewAdminHandler(analyticsService, logger),
		Metrics:        metrics.Handler(registry),
		AllowedOrigins: cfg.CORSOrigins,
		AccessLog:      true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Feedback backend starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-shutdownCtx.Done()
	logger.Info("Shutting down")
	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStores(cfg *config.Config, logger *zap.Logger) (*repository.Stores, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.NewStores(db), func() { _ = db.Close() }, nil
	default:
		db, err := database.ConnectMongo(cfg.MongoURI, cfg.DBName, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoStores(db), func() {
			if err := database.DisconnectMongo(db); err != nil {
				logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
			}
		}, nil
	}
}

func newClassifier(cfg *config.Config, logger *zap.Logger) sentiment.Classifier {
	if cfg.ClassifierURL == "" {
		logger.Info("CLASSIFIER_URL not set, using the built-in lexicon classifier")
		return sentiment.NewLexicon()
	}
	return sentiment.NewRemote(cfg.ClassifierURL, cfg.ClassifierTimeout)
}

func newNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.ResendAPIKey == "" || cfg.NotifyEmail == "" {
		logger.Info("RESEND_API_KEY or NOTIFY_EMAIL not set, feedback notifications go to the log")
		return notify.NewLogNotifier(logger)
	}
	return notify.NewEmailNotifier(cfg.ResendAPIKey, cfg.FromEmail, cfg.NotifyEmail, logger)
}
