package utils_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotwatch/pkg/utils"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *utils.CustomError
		code int
		msg  string
	}{
		{"validation", utils.NewValidationError("no VIN"), http.StatusBadRequest, "Validation failed: no VIN"},
		{"network", utils.NewNetworkError("connection refused"), http.StatusBadGateway, "Request failed: connection refused"},
		{"blocked", utils.NewBlockedError("slider not solved"), http.StatusForbidden, "Blocked by bot verification: slider not solved"},
		{"ui", utils.NewUIError("form not found"), http.StatusUnprocessableEntity, "Page interaction failed: form not found"},
		{"captcha", utils.NewCaptchaError("empty token"), http.StatusForbidden, "Captcha solve failed: empty token"},
		{"internal", utils.NewInternalServerError("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestCustomErrorUnwrapsViaAs(t *testing.T) {
	var target *utils.CustomError
	err := error(utils.NewValidationError("detail"))

	require.True(t, errors.As(err, &target))
	assert.Equal(t, http.StatusBadRequest, target.Code)
}

func TestGetStringOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", utils.GetStringOrDefault("", "fallback"))
	assert.Equal(t, "value", utils.GetStringOrDefault("value", "fallback"))
}
