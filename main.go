package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShashankBhake/st-shield-backend/config"
	"github.com/ShashankBhake/st-shield-backend/controllers"
	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/ShashankBhake/st-shield-backend/middleware"
	"github.com/ShashankBhake/st-shield-backend/notifications"
	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
	"github.com/ShashankBhake/st-shield-backend/pricing"
	"github.com/ShashankBhake/st-shield-backend/routes"
	"github.com/ShashankBhake/st-shield-backend/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "st-shield-backend"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Initialize("production")
		logger.Log.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)
	awsReady := awsErr == nil

	// CloudWatch log shipping is opt-in
	var cwWriter *awspkg.CloudWatchLogsClient
	if awsReady && os.Getenv("CLOUDWATCH_ENABLED") == "true" {
		if w, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName); err == nil {
			cwWriter = w
		}
	}
	if cwWriter != nil {
		logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		logger.Initialize(cfg.Env)
	}
	defer logger.Sync()
	log := logger.Log

	if !awsReady {
		log.Warn("AWS config unavailable, AWS-backed components disabled", zap.Error(awsErr))
	} else {
		cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	var metricsClient *awspkg.MetricsClient
	if awsReady {
		metricsClient = awspkg.NewMetricsClient(awsCfg)
	}

	deps, err := bootstrap(ctx, cfg, awsCfg, awsReady, log)
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	ids, err := services.NewSnowflakeIDGenerator(cfg.NodeID)
	if err != nil {
		log.Fatal("Failed to initialize policy id generator", zap.Error(err))
	}

	renderer, err := notifications.NewRenderer()
	if err != nil {
		log.Fatal("Failed to parse email templates", zap.Error(err))
	}
	notifier := notifications.NewNotifier(deps.dispatcher, renderer, cfg.BusinessEmail)

	prices := pricing.NewRegistry(cfg.PlanPrices)
	orderService := services.NewOrderService(prices, deps.provider, deps.orders, cfg.Currency, metricsClient)
	paymentService := services.NewPaymentService(deps.provider, deps.orders, deps.repo, ids, notifier, deps.publisher, metricsClient, cfg.Currency)
	exportService := services.NewExportService(deps.repo, deps.exports)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
		middleware.Prometheus(),
		middleware.MetricsMiddleware(metricsClient, serviceName),
		middleware.Timeout(30*time.Second),
	)

	limiter := middleware.NewPerMinuteLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer limiter.Stop()

	routes.RegisterRoutes(r, routes.Handlers{
		Payments: controllers.NewPaymentController(orderService, paymentService, cfg.IsDevelopment()),
		Health: controllers.NewHealthController(controllers.HealthStatus{
			Service:            serviceName,
			Env:                cfg.Env,
			ProviderConfigured: deps.provider != nil,
			StoreDriver:        cfg.StoreDriver,
			CacheDriver:        cfg.CacheDriver,
			EmailConfigured:    notifier.Enabled(),
			EventBus:           cfg.EventBus,
		}),
		Exports: controllers.NewExportController(exportService, cfg.IsDevelopment()),
	}, limiter, cfg.AdminJWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	deps.close(shutdownCtx, log)
	log.Info("Server exited cleanly")
}
