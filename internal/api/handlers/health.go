package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/pkg/models"
	"lotwatch/pkg/utils"
)

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
	}

	return c.JSON(http.StatusOK, response)
}

// StatusHandler provides service status including the configured identifiers
// and the execution mode the next check would use.
func StatusHandler(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		mode := "http"
		if cfg.Scraper.BrowserEnabled {
			mode = "browser"
		}

		response := models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks: map[string]string{
				"api":                 "operational",
				"mode":                mode,
				"vin_configured":      boolWord(cfg.Vehicle.VIN != ""),
				"plate_configured":    boolWord(cfg.Vehicle.Plate != ""),
				"telegram_configured": boolWord(cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != ""),
			},
		}

		return c.JSON(http.StatusOK, response)
	}
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
