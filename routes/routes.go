package routes

import (
	"github.com/ShashankBhake/st-shield-backend/controllers"
	"github.com/ShashankBhake/st-shield-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the controllers mounted by RegisterRoutes.
type Handlers struct {
	Payments *controllers.PaymentController
	Health   *controllers.HealthController
	Exports  *controllers.ExportController
}

// RegisterRoutes sets up the public, admin and operational routes.
func RegisterRoutes(r *gin.Engine, h Handlers, limiter *middleware.RateLimiter, adminSecret string) {
	r.GET("/health", h.Health.Health)
	r.GET("/health/metrics", h.Health.Metrics)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiter))
	api.POST("/create-order", h.Payments.CreateOrder)
	api.POST("/verify-payment", h.Payments.VerifyPayment)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(adminSecret))
	admin.POST("/exports", h.Exports.Create)
	admin.GET("/exports", h.Exports.List)
	admin.GET("/exports/:name", h.Exports.Download)
	admin.DELETE("/exports/:name", h.Exports.Delete)
}
