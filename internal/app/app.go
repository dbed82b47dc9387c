// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smarttel/smarttel-ivr-go/internal/api"
	"github.com/smarttel/smarttel-ivr-go/internal/config"
	"github.com/smarttel/smarttel-ivr-go/internal/intent"
	"github.com/smarttel/smarttel-ivr-go/internal/logger"
	"github.com/smarttel/smarttel-ivr-go/internal/metrics"
	"github.com/smarttel/smarttel-ivr-go/internal/ratelimit"
	"github.com/smarttel/smarttel-ivr-go/internal/sentry"
	"github.com/smarttel/smarttel-ivr-go/internal/storage"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg           *config.Config
	logger        *logger.Logger
	db            *storage.DB
	repo          *storage.Repository
	metrics       *metrics.Metrics
	dispatcher    *intent.Dispatcher
	intentLimiter *ratelimit.KeyedWindow
	globalLimiter *ratelimit.Limiter
	server        *http.Server
	wg            sync.WaitGroup
}

// Initialize creates the application with all dependencies wired.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "smarttel-ivr")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Default logger so package-level slog.*Context() calls pick up
	// request-scoped values via ContextHandler.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if sentry.IsEnabled() {
		log.Info("Sentry error tracking enabled")
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	m := metrics.New()
	repo := storage.NewRepository(db, log)
	dispatcher := intent.NewDefaultDispatcher(repo, m, log)

	intentLimiter := ratelimit.NewKeyedWindow(ratelimit.WindowConfig{
		MaxRequests:   cfg.IntentRateLimit,
		Window:        cfg.IntentRateWindow,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		OnDrop: func(string) {
			m.RecordRateLimitDrop("intent")
		},
	})

	globalLimiter := ratelimit.New(cfg.GlobalRateLimitRPS, int(cfg.GlobalRateLimitRPS))

	apiHandler := api.NewHandler(repo, dispatcher, intentLimiter, m, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	app := &Application{
		cfg:           cfg,
		logger:        log,
		db:            db,
		repo:          repo,
		metrics:       m,
		dispatcher:    dispatcher,
		intentLimiter: intentLimiter,
		globalLimiter: globalLimiter,
	}

	// Open CORS so the shell can be hosted off-origin during development
	router.Use(cors.Default())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))
	router.Use(app.globalRateLimitMiddleware())

	router.GET("/", serveShell)
	router.GET("/healthz", app.livenessCheck)
	router.HEAD("/healthz", app.livenessCheck)
	router.GET("/ready", app.readinessCheck)
	router.HEAD("/ready", app.readinessCheck)
	router.POST("/fetch_customer", apiHandler.FetchCustomer)
	router.POST("/register", apiHandler.Register)
	router.POST("/intent", apiHandler.ProcessIntent)
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsPassword != "", cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(m.Handler()))

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: config.HTTPReadTimeout,
		ReadTimeout:       config.HTTPReadTimeout,
		WriteTimeout:      config.HTTPWriteTimeout,
		IdleTimeout:       config.HTTPIdleTimeout,
	}

	log.Info("Initialization complete")
	return app, nil
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	count, err := a.repo.CountCustomers(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: customer count unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"database":  "connected",
		"customers": count,
	})
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Shutdown sequence:
//  1. Cancel context to stop background jobs
//  2. Wait for background goroutines to finish
//  3. Stop the HTTP server, close resources, flush the logger
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.updateCustomerGauge(ctx)
	}()
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server, then closes resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")

	a.intentLimiter.Stop()

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// updateCustomerGauge periodically records the customer count to Prometheus.
func (a *Application) updateCustomerGauge(ctx context.Context) {
	a.logger.Debug("Customer gauge job started")
	defer a.logger.Debug("Customer gauge job stopped")

	a.recordCustomerGauge(ctx)

	ticker := time.NewTicker(config.CustomerGaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Customer gauge received shutdown signal")
			return
		case <-ticker.C:
			a.recordCustomerGauge(ctx)
		}
	}
}

func (a *Application) recordCustomerGauge(ctx context.Context) {
	count, err := a.repo.CountCustomers(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count customers for gauge")
		return
	}
	a.metrics.SetCustomersTotal(count)
}

// globalRateLimitMiddleware bounds total request throughput across all routes.
func (a *Application) globalRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.globalLimiter.Allow() {
			a.metrics.RecordRateLimitDrop("global")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"message": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
