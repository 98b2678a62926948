package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"ventamart/internal/caching"
	"ventamart/internal/repositories"

	"github.com/labstack/echo/v4"
)

// JobStatusReporter exposes background scheduler state for the detailed
// health check.
type JobStatusReporter interface {
	GetJobStatus() map[string]interface{}
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        repositories.Database
	cacheSvc  caching.CacheService
	scheduler JobStatusReporter
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db repositories.Database, cacheSvc caching.CacheService, scheduler JobStatusReporter) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cacheSvc:  cacheSvc,
		scheduler: scheduler,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck performs health checks across dependencies
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := h.checkDatabase(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.checkCache(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) checkCache(ctx context.Context) error {
	if h.cacheSvc == nil {
		return nil
	}
	return h.cacheSvc.Ping(ctx)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.checkDatabase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck provides per-dependency health information
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	checks := make(map[string]interface{})
	overall := "healthy"

	dbCheck := map[string]interface{}{
		"status":  "healthy",
		"message": "",
	}
	start := time.Now()
	if err := h.checkDatabase(ctx); err != nil {
		dbCheck["status"] = "unhealthy"
		dbCheck["message"] = err.Error()
		overall = "degraded"
	}
	dbCheck["latency_ms"] = time.Since(start).Milliseconds()
	checks["database"] = dbCheck

	redisCheck := map[string]interface{}{
		"status":  "healthy",
		"message": "",
	}
	if err := h.checkCache(ctx); err != nil {
		redisCheck["status"] = "unhealthy"
		redisCheck["message"] = err.Error()
		overall = "degraded"
	}
	checks["redis"] = redisCheck

	if h.scheduler != nil {
		checks["jobs"] = h.scheduler.GetJobStatus()
	}

	statusCode := http.StatusOK
	if overall == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, map[string]interface{}{
		"overall_status": overall,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        "1.0.0",
		"goroutines":     runtime.NumGoroutine(),
	})
}
