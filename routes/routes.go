package routes

import (
	"net/http"
	"strings"
	"time"

	"tripdesk/config"
	"tripdesk/handlers"
	"tripdesk/middleware"
	"tripdesk/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		health := utils.GetHealthStatus()
		status := http.StatusOK
		if !health.Redis {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": health})
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(r *gin.Engine, g prometheus.Gatherer) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// RegisterIdentityRoutes registers the session lookup endpoint.
func RegisterIdentityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/identity")
	{
		api.Use(visitor())
		api.GET("", hb.GetIdentity)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(visitor())
		bookingGroup.GET("", hb.GetFlow)
		bookingGroup.DELETE("", hb.CloseFlow)
		bookingGroup.POST("/:destinationID/open", hb.OpenFlow)
		bookingGroup.PATCH("/fields", hb.SetField)
		bookingGroup.POST("/submit", hb.Submit)
		bookingGroup.POST("/ack", hb.Acknowledge)
		bookingGroup.POST("/auth/success", hb.AuthSuccess)
		bookingGroup.POST("/auth/dismiss", hb.AuthDismiss)
	}
}

func visitor() gin.HandlerFunc {
	return middleware.VisitorMiddleware(config.AppConfig.VisitorCookie, config.IsProduction())
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, g prometheus.Gatherer) {
	r.Use(cors.New(corsConfig(config.AppConfig.AllowedOrigins)))

	RegisterHealthRoute(r)
	RegisterMetricsRoute(r, g)
	RegisterIdentityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}

func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.ProgressHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		// Credentials require a concrete origin, so echo the caller's.
		cfg.AllowOrigins = nil
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cfg
}
