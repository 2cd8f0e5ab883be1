package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"lotwatch/internal/api/handlers"
	"lotwatch/internal/api/middleware"
	"lotwatch/internal/checker"
	"lotwatch/internal/config"
	"lotwatch/internal/notify"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, chk *checker.Checker, notifier *notify.TelegramNotifier) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	// A full browser check can take minutes; size the request ceiling to it
	e.Use(middleware.TimeoutConfig(5 * time.Minute))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(cfg))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/check", handlers.CheckHandler(cfg, chk, notifier))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Lotwatch Vehicle Checker",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
