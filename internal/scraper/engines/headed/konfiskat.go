package headed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/internal/scraper"
	"lotwatch/internal/scraper/captcha"
	"lotwatch/pkg/models"
	"lotwatch/pkg/utils"
)

const (
	searchFormSelector   = "form#js-search-form"
	queryInputSelector   = "input[name='query']"
	submitButtonSelector = "button[type='submit']"
)

// KonfiskatDriver runs the seizures-site check through the interactive
// page: navigate, pass the bot-verification slider when it gates the page,
// reveal the search panel, submit each candidate and read the results.
type KonfiskatDriver struct {
	cfg      *config.Config
	session  *Session
	slider   *captcha.SliderSolver
	fallback captcha.FallbackSolver
	logger   logging.Logger
}

// NewKonfiskatDriver creates the seizures-site driver on a shared session
func NewKonfiskatDriver(cfg *config.Config, session *Session, logger logging.Logger) *KonfiskatDriver {
	return &KonfiskatDriver{
		cfg:      cfg,
		session:  session,
		slider:   captcha.NewSliderSolver(cfg, logger),
		fallback: captcha.NewTwoCaptchaSolver(cfg, logger),
		logger:   logger.WithField("prober", "konfiskat_browser"),
	}
}

// Name returns the source name for alerts
func (d *KonfiskatDriver) Name() string {
	return scraper.KonfiskatSourceName
}

// Probe drives the full seizures-site UI flow. All failure modes resolve to
// a negative verdict; nothing escapes this boundary.
func (d *KonfiskatDriver) Probe(ctx context.Context, ident models.Identifier) models.Verdict {
	baseURL := d.cfg.Sites.KonfiskatURL

	queries := ident.Queries()
	if len(queries) == 0 {
		return models.NotFound(baseURL, "No VIN or plate to search")
	}

	if err := d.session.Navigate(ctx, baseURL); err != nil {
		d.logger.Error("Navigation failed", map[string]interface{}{"error": err.Error()})
		return models.NotFound(baseURL, utils.NewNetworkError(err.Error()).Error())
	}

	if d.challengePresent() {
		if err := d.passChallenge(ctx); err != nil {
			d.logger.Warn("Could not pass bot verification; skipping seizures site check", map[string]interface{}{
				"error": err.Error(),
			})
			return models.NotFound(baseURL, err.Error())
		}
		time.Sleep(500 * time.Millisecond)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		verdict, err := d.searchAll(ctx, ident, queries)
		if err == nil {
			return verdict
		}
		lastErr = err

		// The challenge can reappear mid-flow and eat the form; one
		// re-solve plus one retry, then give up with a page dump.
		if attempt == 0 && d.slider.Solve(d.session.Page()) {
			d.logger.Info("Form not found; passed challenge on retry, continuing", map[string]interface{}{})
			time.Sleep(500 * time.Millisecond)
			continue
		}
		break
	}

	return d.failWithArtifact(lastErr)
}

// challengePresent inspects title and content for the known verification
// markers.
func (d *KonfiskatDriver) challengePresent() bool {
	title := d.session.Title()
	html, err := d.session.HTML()
	if err != nil {
		html = ""
	}
	snippet := html
	if len(snippet) > 8000 {
		snippet = snippet[:8000]
	}

	return strings.Contains(title, "Проверка пользователя") ||
		strings.Contains(strings.ToLower(title), "user verification") ||
		strings.Contains(snippet, "kill-bot.ru") ||
		strings.Contains(snippet, "KillBot")
}

// passChallenge tries the slider first, then the vendor-captcha fallback in
// case the site swapped its protection for a stock widget. The returned
// error carries the verdict details for an unpassable challenge.
func (d *KonfiskatDriver) passChallenge(ctx context.Context) error {
	if d.slider.Solve(d.session.Page()) {
		return nil
	}

	blocked := utils.NewBlockedError(
		"cannot check from this environment; a scheduled runner on different infrastructure may still reach the site")

	// The paid fallback only makes sense for a solvable vendor widget and a
	// reachable solving service.
	if d.fallback == nil || !d.fallback.IsHealthy() {
		return blocked
	}

	html, err := d.session.HTML()
	if err != nil {
		return blocked
	}

	vendor, siteKey, ok := captcha.DetectVendor(html)
	if !ok {
		return blocked
	}

	var token string
	switch vendor {
	case captcha.VendorTurnstile:
		token, err = d.fallback.SolveTurnstile(ctx, siteKey, d.session.URL())
	case captcha.VendorRecaptcha:
		token, err = d.fallback.SolveRecaptcha(ctx, siteKey, d.session.URL())
	}
	if err != nil {
		return utils.NewCaptchaError(err.Error())
	}
	if token == "" {
		return utils.NewCaptchaError("solving service returned an empty token")
	}

	if err := captcha.InjectVendorToken(d.session.Page(), vendor, token); err != nil {
		return utils.NewCaptchaError(err.Error())
	}
	d.session.WaitSettled()

	if err := rod.Try(func() {
		d.session.Page().Timeout(10 * time.Second).MustElement(searchFormSelector)
	}); err != nil {
		return utils.NewCaptchaError("challenge still gating the page after token injection")
	}
	return nil
}

// searchAll submits every candidate in order. A decisive outcome comes back
// as a verdict; a UI exception comes back as an error for the caller's
// retry logic.
func (d *KonfiskatDriver) searchAll(ctx context.Context, ident models.Identifier, queries []string) (models.Verdict, error) {
	page := d.session.Page()

	if err := rod.Try(func() {
		page.Timeout(15 * time.Second).MustElement(searchFormSelector)
	}); err != nil {
		return models.Verdict{}, err
	}

	if err := d.revealSearchInput(); err != nil {
		return models.Verdict{}, err
	}

	for i, query := range queries {
		if err := rod.Try(func() {
			input := page.Timeout(10 * time.Second).MustElement(queryInputSelector)
			input.MustWaitVisible()
			input.MustSelectAllText().MustInput("")
			input.MustInput(query)
			time.Sleep(200 * time.Millisecond)
			page.MustElement(searchFormSelector).MustElement(submitButtonSelector).MustClick()
		}); err != nil {
			return models.Verdict{}, err
		}
		d.session.WaitSettled()

		html, err := d.session.HTML()
		if err != nil {
			return models.Verdict{}, err
		}
		if scraper.HasResultListings(html) && scraper.PageContainsIdentifier(html, ident.VIN, ident.Plate) {
			url := utils.GetStringOrDefault(d.session.URL(), d.cfg.Sites.KonfiskatURL)
			return models.FoundAt(url, fmt.Sprintf("Match for query %q on konfiskat-gov.ru", query)), nil
		}

		// Submission navigates away; reopen the search panel before the
		// next candidate.
		if i < len(queries)-1 {
			if err := d.session.Navigate(ctx, d.cfg.Sites.KonfiskatURL); err != nil {
				return models.Verdict{}, err
			}
			if err := d.revealSearchInput(); err != nil {
				return models.Verdict{}, err
			}
		}
	}

	return models.NotFound(d.cfg.Sites.KonfiskatURL, "No matching listings"), nil
}

// revealSearchInput triggers the site's own affordance for showing the
// query input.
func (d *KonfiskatDriver) revealSearchInput() error {
	err := rod.Try(func() {
		d.session.Page().MustEval(`() => { if (typeof openFilterSearch === 'function') openFilterSearch(); }`)
	})
	time.Sleep(500 * time.Millisecond)
	return err
}

// failWithArtifact dumps the current page markup for offline triage (block
// page vs real page) and produces the terminal negative verdict.
func (d *KonfiskatDriver) failWithArtifact(cause error) models.Verdict {
	baseURL := d.cfg.Sites.KonfiskatURL
	if cause != nil {
		d.logger.Debug("Seizures site check failed", map[string]interface{}{"error": cause.Error()})
	}

	html, err := d.session.HTML()
	if err != nil {
		return models.NotFound(baseURL, utils.NewUIError(fmt.Sprintf("form/input not found; could not save page: %v", err)).Error())
	}

	path := d.cfg.Scraper.DebugHTMLPath
	content := fmt.Sprintf("<!-- URL: %s -->\n%s", d.session.URL(), html)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return models.NotFound(baseURL, utils.NewUIError(fmt.Sprintf("form/input not found; could not save page: %v", err)).Error())
	}

	return models.NotFound(baseURL, utils.NewUIError(fmt.Sprintf(
		"form/input not found; page saved to %s, open it to see what the site returned (block page vs real page)",
		filepath.Base(path))).Error())
}
