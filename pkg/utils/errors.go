package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

// NewNetworkError covers transport/DNS/timeout failures on raw requests.
func NewNetworkError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Request failed",
		Detail:  detail,
	}
}

// NewBlockedError is returned when a site gates the probe behind a
// bot-verification challenge that could not be passed.
func NewBlockedError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusForbidden,
		Message: "Blocked by bot verification",
		Detail:  detail,
	}
}

// NewUIError covers interactive-page failures: elements that never attach or
// never become visible.
func NewUIError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Page interaction failed",
		Detail:  detail,
	}
}

// NewCaptchaError is returned when a challenge was detected but solving it
// failed.
func NewCaptchaError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusForbidden,
		Message: "Captcha solve failed",
		Detail:  detail,
	}
}
