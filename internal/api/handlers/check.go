package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"lotwatch/internal/checker"
	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/internal/notify"
	"lotwatch/pkg/models"
	"lotwatch/pkg/utils"
)

// CheckHandler runs an on-demand vehicle check. Identifiers come from the
// request body, falling back per-field to the configured vehicle. A positive
// result also fires the Telegram alert when the notifier is configured.
func CheckHandler(cfg *config.Config, chk *checker.Checker, notifier *notify.TelegramNotifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()

		var req models.CheckRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_error",
				Message:   "Invalid request body",
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}

		ident := models.Identifier{
			VIN:   strings.TrimSpace(req.VIN),
			Plate: strings.TrimSpace(req.Plate),
		}
		if ident.IsEmpty() {
			ident = models.Identifier{
				VIN:   cfg.Vehicle.VIN,
				Plate: cfg.Vehicle.Plate,
			}
		}
		if ident.IsEmpty() {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_error",
				Message:   "No VIN or plate in request or configuration",
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}

		result, err := chk.Check(c.Request().Context(), ident)
		if err != nil {
			logger.Error("Check failed", map[string]interface{}{"error": err.Error()})

			// CustomError carries the HTTP status for the failure class
			var appErr *utils.CustomError
			if !errors.As(err, &appErr) {
				appErr = utils.NewInternalServerError(err.Error())
			}
			return c.JSON(appErr.Code, models.ErrorResponse{
				Error:     http.StatusText(appErr.Code),
				Message:   appErr.Error(),
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}

		if result.AnyFound() && notifier != nil && notifier.Configured() {
			if err := notifier.SendAlert(c.Request().Context(), result.Findings); err != nil {
				logger.Warn("Failed to send alert", map[string]interface{}{"error": err.Error()})
			}
		}

		return c.JSON(http.StatusOK, models.CheckResponse{
			Success:        true,
			RequestID:      result.RequestID,
			Mode:           result.Mode,
			Found:          result.AnyFound(),
			Findings:       result.Findings,
			Verdicts:       result.Verdicts,
			ProcessingTime: result.ProcessingTime,
		})
	}
}
