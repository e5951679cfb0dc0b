package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripdesk/config"
	"tripdesk/handlers"
	"tripdesk/metrics"
	"tripdesk/middleware"
	"tripdesk/routes"
	"tripdesk/services/api"
	"tripdesk/services/booking"
	"tripdesk/services/flow"
	"tripdesk/services/intent"
	"tripdesk/services/notification"
	"tripdesk/services/progress"
	"tripdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cache := utils.GetIntentCacheClient()
	rootCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(rootCtx, cache, 30*time.Second)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("tripdesk", reg)

	// services.
	apiClient := api.NewClient(config.AppConfig.APIBaseURL, config.AppConfig.APITimeout, logger)
	intents := intent.NewRedisStore(cache, config.AppConfig.IntentTTL)
	notifier := notification.NewFlashNotifier(logger)
	tracker := progress.NewTracker(m.InFlight)
	gateway := &booking.SubmissionGateway{
		API:             apiClient,
		DefaultCurrency: config.AppConfig.DefaultCurrency,
		Logger:          logger,
	}

	flows := flow.NewManager(flow.Deps{
		Destinations:    apiClient,
		Sessions:        apiClient,
		Intents:         intents,
		Gateway:         gateway,
		Notifier:        notifier,
		Progress:        tracker,
		Metrics:         m,
		Logger:          logger,
		DisplayWindow:   config.AppConfig.SuccessDisplayWindow,
		DefaultCurrency: config.AppConfig.DefaultCurrency,
	}, config.AppConfig.FlowIdleTimeout)
	flows.StartJanitor(time.Minute)
	defer flows.Shutdown()

	bookingHandler := handlers.NewBookingHandler(flows, apiClient, notifier, m)

	// Create the Gin router.
	router := gin.New()
	if err := router.SetTrustedProxies(middleware.TrustedProxies(config.AppConfig.TrustedProxies)); err != nil {
		logger.Sugar().Fatalf("main: invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	router.Use(middleware.ProgressMiddleware(tracker))

	routes.RegisterRoutes(router, handlers.NewHandlerBundle(bookingHandler), reg)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
