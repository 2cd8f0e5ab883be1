package captcha

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	api2captcha "github.com/2captcha/2captcha-go"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
)

// FallbackSolver solves vendor captchas through an external service. It is
// the hedge for the day the seizures site swaps its slider for a stock
// challenge vendor; the slider itself is always solved in-browser.
type FallbackSolver interface {
	SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error)
	SolveTurnstile(ctx context.Context, siteKey, pageURL string) (string, error)
	IsHealthy() bool
}

// TwoCaptchaSolver implements 2CAPTCHA service integration using the
// official library
type TwoCaptchaSolver struct {
	cfg    *config.Config
	client *api2captcha.Client
	logger logging.Logger
}

// NewTwoCaptchaSolver creates a new 2CAPTCHA solver instance
func NewTwoCaptchaSolver(cfg *config.Config, logger logging.Logger) *TwoCaptchaSolver {
	log := logger.WithField("component", "2captcha")

	if cfg.Captcha.APIKey == "" {
		log.Debug("2CAPTCHA API key not configured - vendor captcha fallback disabled")
	}

	client := api2captcha.NewClient(cfg.Captcha.APIKey)
	client.DefaultTimeout = int(cfg.Captcha.Timeout.Seconds())
	client.RecaptchaTimeout = int(cfg.Captcha.Timeout.Seconds())
	client.PollingInterval = 5

	return &TwoCaptchaSolver{
		cfg:    cfg,
		client: client,
		logger: log,
	}
}

// SolveRecaptcha solves a reCAPTCHA v2 challenge
func (tcs *TwoCaptchaSolver) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	if err := tcs.usable(); err != nil {
		return "", err
	}

	startTime := time.Now()
	captcha := api2captcha.ReCaptcha{
		SiteKey: siteKey,
		Url:     pageURL,
	}

	req := captcha.ToRequest()
	code, _, err := tcs.client.Solve(req)
	if err != nil {
		return "", fmt.Errorf("failed to solve reCAPTCHA: %w", err)
	}

	tcs.logger.Info("Solved reCAPTCHA", map[string]interface{}{
		"page_url":     pageURL,
		"solving_time": time.Since(startTime).String(),
	})
	return code, nil
}

// SolveTurnstile solves a Cloudflare Turnstile challenge
func (tcs *TwoCaptchaSolver) SolveTurnstile(ctx context.Context, siteKey, pageURL string) (string, error) {
	if err := tcs.usable(); err != nil {
		return "", err
	}

	startTime := time.Now()
	captcha := api2captcha.CloudflareTurnstile{
		SiteKey: siteKey,
		Url:     pageURL,
	}

	req := captcha.ToRequest()
	code, _, err := tcs.client.Solve(req)
	if err != nil {
		return "", fmt.Errorf("failed to solve Turnstile: %w", err)
	}

	tcs.logger.Info("Solved Turnstile", map[string]interface{}{
		"page_url":     pageURL,
		"solving_time": time.Since(startTime).String(),
	})
	return code, nil
}

func (tcs *TwoCaptchaSolver) usable() error {
	if !tcs.cfg.Captcha.EnableAutoSolve {
		return fmt.Errorf("captcha auto-solve is disabled")
	}
	if tcs.cfg.Captcha.APIKey == "" {
		return fmt.Errorf("2CAPTCHA API key not configured")
	}
	return nil
}

// IsHealthy checks if the 2CAPTCHA service is available
func (tcs *TwoCaptchaSolver) IsHealthy() bool {
	if tcs.cfg.Captcha.APIKey == "" {
		return false
	}

	balance, err := tcs.client.GetBalance()
	if err != nil {
		tcs.logger.Error("2CAPTCHA health check failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	return balance >= 0
}

var siteKeyPattern = regexp.MustCompile(`data-sitekey=["']([^"']+)["']`)

// Vendor captcha kinds recognized by DetectVendor
const (
	VendorRecaptcha = "recaptcha"
	VendorTurnstile = "turnstile"
)

// DetectVendor checks page content for a stock challenge vendor and returns
// its kind and site key. The seizures site currently ships a proprietary
// slider, so this only fires after a vendor swap.
func DetectVendor(pageContent string) (string, string, bool) {
	lower := strings.ToLower(pageContent)

	if strings.Contains(lower, "turnstile") || strings.Contains(lower, "cf-turnstile") {
		if m := siteKeyPattern.FindStringSubmatch(pageContent); m != nil {
			return VendorTurnstile, m[1], true
		}
	}

	if strings.Contains(lower, "g-recaptcha") || strings.Contains(lower, "recaptcha") {
		if m := siteKeyPattern.FindStringSubmatch(pageContent); m != nil {
			return VendorRecaptcha, m[1], true
		}
	}

	return "", "", false
}
