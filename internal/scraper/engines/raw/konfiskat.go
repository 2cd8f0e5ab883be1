package raw

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/internal/scraper"
	"lotwatch/pkg/models"
	"lotwatch/pkg/utils"
)

// Responses shorter than this with no token are almost always a
// bot-verification interstitial rather than the real search page.
const smallResponseBytes = 5000

// KonfiskatProber replays the seizures-site search as a raw form submission:
// fetch the page, lift the anti-forgery token out of the markup, POST the
// query back. No browser, no session state beyond the one token reuse.
type KonfiskatProber struct {
	cfg     *config.Config
	client  *http.Client
	baseURL string
	logger  logging.Logger
}

// NewKonfiskatProber creates a raw HTTP prober for the seizures site
func NewKonfiskatProber(cfg *config.Config, logger logging.Logger) *KonfiskatProber {
	return &KonfiskatProber{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Scraper.RequestTimeout},
		baseURL: cfg.Sites.KonfiskatURL,
		logger:  logger.WithField("prober", "konfiskat_raw"),
	}
}

// Name returns the source name for alerts
func (p *KonfiskatProber) Name() string {
	return scraper.KonfiskatSourceName
}

// fetchSearchPage issues the initial GET that carries the token
func (p *KonfiskatProber) fetchSearchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return "", err
	}
	p.setBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// search replays the search form as a URL-encoded POST and returns the
// response body together with the final URL after redirects.
func (p *KonfiskatProber) search(ctx context.Context, query, token string) (string, string, error) {
	form := url.Values{
		"_token":     {token},
		"query":      {query},
		"page":       {"1"},
		"category[]": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	p.setBrowserHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	return string(body), resp.Request.URL.String(), nil
}

func (p *KonfiskatProber) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", p.cfg.Scraper.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", p.cfg.Scraper.AcceptLanguage)
}

// looksBlocked distinguishes a verification interstitial from an ordinary
// token-less page using content markers and response size.
func looksBlocked(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "verification") ||
		strings.Contains(lower, "killbot") ||
		strings.Contains(lower, "kill-bot") ||
		len(html) < smallResponseBytes
}

// Probe fetches the search page, extracts the token and tries each search
// candidate in order, short-circuiting on the first confirmed match.
func (p *KonfiskatProber) Probe(ctx context.Context, ident models.Identifier) models.Verdict {
	html, err := p.fetchSearchPage(ctx)
	if err != nil {
		p.logger.Error("Failed to load search page", map[string]interface{}{"error": err.Error()})
		return models.NotFound(p.baseURL, utils.NewNetworkError(err.Error()).Error())
	}

	token, ok := scraper.ExtractToken(html)
	if !ok {
		if looksBlocked(html) {
			return models.NotFound(p.baseURL, utils.NewBlockedError("could not extract CSRF token").Error())
		}
		return models.NotFound(p.baseURL, "Could not extract CSRF token")
	}

	queries := ident.Queries()
	var lastErr string
	failed := 0
	for _, query := range queries {
		searchHTML, finalURL, err := p.search(ctx, query, token)
		if err != nil {
			// A failed candidate does not abort the rest
			p.logger.Warn("Search request failed", map[string]interface{}{
				"query": query,
				"error": err.Error(),
			})
			lastErr = err.Error()
			failed++
			continue
		}

		if scraper.HasResultListings(searchHTML) && scraper.PageContainsIdentifier(searchHTML, ident.VIN, ident.Plate) {
			finalURL = utils.GetStringOrDefault(finalURL, p.baseURL)
			return models.FoundAt(finalURL, fmt.Sprintf("Match for query %q on konfiskat-gov.ru", query))
		}
	}

	// Only report the transport error when no candidate got through at all
	if failed == len(queries) && lastErr != "" {
		return models.NotFound(p.baseURL, utils.NewNetworkError(lastErr).Error())
	}
	return models.NotFound(p.baseURL, "No matching listings")
}
