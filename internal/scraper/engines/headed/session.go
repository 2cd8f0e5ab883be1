package headed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
)

// Session owns the one browser and page used for a run. Both site drivers
// share it so the anti-automation fingerprint setup (stealth page, locale,
// timezone, language headers) is paid once, and the browser presents a
// single consistent identity across probes.
type Session struct {
	cfg      *config.Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   logging.Logger
}

// NewSession launches the browser and prepares the shared stealth page
func NewSession(cfg *config.Config, logger logging.Logger) (*Session, error) {
	log := logger.WithField("component", "browser")

	l := launcher.New().
		Headless(cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-infobars").
		Set("disable-gpu").          // prevents GPU context failures in containers
		Set("disable-dev-shm-usage"). // overcomes container shared memory limits
		Set("window-size", "1280,800")

	if chromePath := systemChromePath(cfg.Scraper.ChromePath); chromePath != "" {
		l = l.Bin(chromePath)
		log.Info("Using system Chrome browser", map[string]interface{}{"chrome_path": chromePath})
	} else {
		log.Warn("System Chrome not found, Rod will download a browser", map[string]interface{}{})
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		launcher: l,
		browser:  browser,
		logger:   log,
	}

	if err := s.preparePage(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// preparePage creates the stealth page and applies the fingerprint setup
func (s *Session) preparePage() error {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return fmt.Errorf("failed to create stealth page: %w", err)
	}
	s.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1280,
		Height:            800,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.logger.Warn("Failed to set viewport", map[string]interface{}{"error": err.Error()})
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.cfg.Scraper.UserAgent,
		AcceptLanguage: s.cfg.Scraper.AcceptLanguage,
	}); err != nil {
		s.logger.Warn("Failed to set user agent", map[string]interface{}{"error": err.Error()})
	}

	// The targets are Russian government sites; a non-Russian fingerprint is
	// an easy tell for their bot gating.
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: s.cfg.Scraper.Timezone}).Call(page); err != nil {
		s.logger.Warn("Failed to set timezone", map[string]interface{}{"error": err.Error()})
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: s.cfg.Scraper.Locale}).Call(page); err != nil {
		s.logger.Warn("Failed to set locale", map[string]interface{}{"error": err.Error()})
	}

	if _, err := page.SetExtraHeaders([]string{"Accept-Language", s.cfg.Scraper.AcceptLanguage}); err != nil {
		s.logger.Debug("Failed to set Accept-Language header", map[string]interface{}{"error": err.Error()})
	}

	// Mask the automation flags stealth does not already cover
	err = rod.Try(func() {
		page.MustEval(`() => {
			Object.defineProperty(navigator, 'webdriver', {
				get: () => undefined,
				configurable: true,
				enumerable: true,
			});
			Object.defineProperty(navigator, 'languages', {
				get: () => ['ru-RU', 'ru', 'en'],
			});
			window.chrome = { runtime: {} };
		}`)
	})
	if err != nil {
		s.logger.Warn("Failed to inject stealth JavaScript", map[string]interface{}{"error": err.Error()})
	}

	return nil
}

// Page returns the shared interactive page
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate loads the URL and waits for the page to settle
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Scraper.NavTimeout)
	defer cancel()

	err := rod.Try(func() {
		s.page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	s.WaitSettled()
	return nil
}

// WaitSettled waits for the page to go idle plus a fixed settle delay; both
// targets keep rendering via JS after the load event.
func (s *Session) WaitSettled() {
	if err := s.page.WaitIdle(s.cfg.Scraper.NavTimeout); err != nil {
		s.logger.Debug("Idle wait ended early", map[string]interface{}{"error": err.Error()})
	}
	time.Sleep(s.cfg.Scraper.SettleDelay)
}

// HTML returns the full markup of the current page
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// Title returns the current page title, empty on failure
func (s *Session) Title() string {
	var title string
	_ = rod.Try(func() {
		title = s.page.MustInfo().Title
	})
	return title
}

// URL returns the current page URL, empty on failure
func (s *Session) URL() string {
	var url string
	_ = rod.Try(func() {
		url = s.page.MustInfo().URL
	})
	return url
}

// Close releases the page, browser and launcher. Safe to call more than
// once and regardless of how far setup got.
func (s *Session) Close() {
	if s.page != nil {
		_ = rod.Try(func() { s.page.MustClose() })
		s.page = nil
	}
	if s.browser != nil {
		_ = rod.Try(func() { s.browser.MustClose() })
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
	s.logger.Debug("Browser session closed")
}

// systemChromePath finds a Chrome/Chromium binary, preferring the
// configured path, then well-known install locations.
func systemChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	commonPaths := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
