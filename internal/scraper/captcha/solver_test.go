package captcha

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
)

func TestSolverUnusableWithoutAPIKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Captcha.EnableAutoSolve = true

	s := NewTwoCaptchaSolver(cfg, logging.GetGlobalLogger())

	// An unkeyed solver must fail fast and local, no service round-trip
	assert.False(t, s.IsHealthy())

	_, err := s.SolveRecaptcha(context.Background(), "sitekey", "https://example.com")
	assert.Error(t, err)

	_, err = s.SolveTurnstile(context.Background(), "sitekey", "https://example.com")
	assert.Error(t, err)
}

func TestSolverUnusableWhenAutoSolveDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Captcha.APIKey = "some-key"
	cfg.Captcha.EnableAutoSolve = false

	s := NewTwoCaptchaSolver(cfg, logging.GetGlobalLogger())

	_, err := s.SolveRecaptcha(context.Background(), "sitekey", "https://example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}
