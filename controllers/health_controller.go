package controllers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthStatus is the configuration snapshot reported by /health.
type HealthStatus struct {
	Service            string
	Env                string
	ProviderConfigured bool
	StoreDriver        string
	CacheDriver        string
	EmailConfigured    bool
	EventBus           string
}

type HealthController struct {
	status    HealthStatus
	startedAt time.Time
	memStats  func(*runtime.MemStats)
}

func NewHealthController(status HealthStatus) *HealthController {
	return &HealthController{status: status, startedAt: time.Now(), memStats: runtime.ReadMemStats}
}

// Health handles GET /health. A panic while building the report yields 503.
func (hc *HealthController) Health(ctx *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx.Request.Context()).Error("health check failed", zap.Any("panic", r))
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "health check failed"})
		}
	}()

	var m runtime.MemStats
	hc.memStats(&m)

	ctx.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   hc.status.Service,
		"env":       hc.status.Env,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(hc.startedAt).Round(time.Second).String(),
		"memory": gin.H{
			"alloc": toMB(m.Alloc),
			"sys":   toMB(m.Sys),
		},
		"services": gin.H{
			"razorpay": hc.status.ProviderConfigured,
			"store":    hc.status.StoreDriver,
			"cache":    hc.status.CacheDriver,
			"email":    hc.status.EmailConfigured,
			"events":   hc.status.EventBus,
		},
	})
}

// Metrics handles GET /health/metrics.
func (hc *HealthController) Metrics(ctx *gin.Context) {
	var m runtime.MemStats
	hc.memStats(&m)

	ctx.JSON(http.StatusOK, gin.H{
		"uptime_seconds": int64(time.Since(hc.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"cpus":           runtime.NumCPU(),
		"go_version":     runtime.Version(),
		"memory": gin.H{
			"alloc":       toMB(m.Alloc),
			"total_alloc": toMB(m.TotalAlloc),
			"sys":         toMB(m.Sys),
			"heap_inuse":  toMB(m.HeapInuse),
			"num_gc":      m.NumGC,
		},
	})
}

func toMB(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/1024/1024)
}
