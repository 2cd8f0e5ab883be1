package checker

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/internal/scraper"
	"lotwatch/internal/scraper/engines/headed"
	"lotwatch/internal/scraper/engines/raw"
	"lotwatch/pkg/models"
	"lotwatch/pkg/utils"
)

// Execution modes reported in CheckResult.Mode
const (
	ModeBrowser = "browser"
	ModeHTTP    = "http"
)

// Checker runs the full vehicle check across both marketplace sites. It owns
// mode selection: the browser path when a browser can be launched, the raw
// HTTP path otherwise. Probes run sequentially through a shared limiter so a
// run never hammers either government site.
type Checker struct {
	cfg     *config.Config
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewChecker creates a checker with pacing derived from the configured
// per-minute rate limit.
func NewChecker(cfg *config.Config, logger logging.Logger) *Checker {
	rps := rate.Limit(float64(cfg.Scraper.RateLimit) / 60.0)
	return &Checker{
		cfg:     cfg,
		limiter: rate.NewLimiter(rps, 1),
		logger:  logger.WithField("component", "checker"),
	}
}

// Check runs both site probes for the given identifier and aggregates the
// verdicts. It returns an error only for precondition failures (no
// identifier); site-level failures are folded into the per-site verdicts.
func (c *Checker) Check(ctx context.Context, ident models.Identifier) (*models.CheckResult, error) {
	if ident.IsEmpty() {
		return nil, utils.NewValidationError("no VIN or plate configured")
	}

	requestID := utils.GenerateRequestID()
	startTime := time.Now()

	log := c.logger.WithField("request_id", requestID)
	log.Info("Starting vehicle check", map[string]interface{}{
		"vin_set":   ident.VIN != "",
		"plate_set": ident.Plate != "",
	})

	result := &models.CheckResult{
		RequestID:  requestID,
		Identifier: ident,
		Verdicts:   make(map[string]models.Verdict),
	}

	probers, session := c.buildProbers(log)
	if session != nil {
		defer session.Close()
		result.Mode = ModeBrowser
	} else {
		result.Mode = ModeHTTP
	}
	log.Info("Execution mode selected", map[string]interface{}{"mode": result.Mode})

	for _, prober := range probers {
		if err := c.limiter.Wait(ctx); err != nil {
			result.Verdicts[prober.Name()] = models.NotFound("", err.Error())
			continue
		}

		verdict := prober.Probe(ctx, ident)
		result.Verdicts[prober.Name()] = verdict

		log.Info("Site probe finished", map[string]interface{}{
			"source":  prober.Name(),
			"found":   verdict.Found,
			"details": verdict.Details,
		})

		if verdict.Found {
			result.Findings = append(result.Findings, models.Finding{
				Name: prober.Name(),
				URL:  verdict.URL,
			})
		}
	}

	result.ProcessingTime = time.Since(startTime)
	log.Info("Vehicle check complete", map[string]interface{}{
		"found":           result.AnyFound(),
		"processing_time": utils.FormatDuration(result.ProcessingTime),
	})

	return result, nil
}

// buildProbers selects the execution mode. The browser path covers both
// sites; when the browser is disabled or fails to launch, the run degrades
// to the raw HTTP replay, which only the seizures site supports; the
// marketplace catalogue is an SPA with nothing to replay.
func (c *Checker) buildProbers(log logging.Logger) ([]scraper.Prober, *headed.Session) {
	if c.cfg.Scraper.BrowserEnabled {
		session, err := headed.NewSession(c.cfg, log)
		if err == nil {
			return []scraper.Prober{
				headed.NewKonfiskatDriver(c.cfg, session, log),
				headed.NewRosimDriver(c.cfg, session, log),
			}, session
		}
		log.Warn("Browser unavailable, falling back to raw HTTP mode", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return []scraper.Prober{
		raw.NewKonfiskatProber(c.cfg, log),
		&skippedProber{
			name:    scraper.RosimSourceName,
			url:     c.cfg.Sites.RosimURL,
			details: "Skipped: site requires a browser and none is available",
		},
	}, nil
}

// skippedProber stands in for a site that cannot be checked in the current
// mode, so the result still carries an explicit verdict for it.
type skippedProber struct {
	name    string
	url     string
	details string
}

func (p *skippedProber) Name() string {
	return p.name
}

func (p *skippedProber) Probe(ctx context.Context, ident models.Identifier) models.Verdict {
	return models.NotFound(p.url, p.details)
}
