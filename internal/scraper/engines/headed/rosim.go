package headed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/internal/scraper"
	"lotwatch/pkg/models"
	"lotwatch/pkg/utils"
)

const (
	filterTabSelector   = "ul.filter-tabs__tabs li"
	vehicleCardSelector = "div.filters-vehicle-card"
	fieldFilterSelector = "div.filters-vehicle-card div.field-filter"
	showFiltersSelector = "button.filter-actions__btn-show"
	applyButtonSelector = "button.filter-actions__btn-apply"
	resultsBodySelector = ".table__body"
	noObjectsMarker     = "Объекты не найдены"
	vinGroupHeading     = "Идентификационный"
)

// RosimDriver checks the marketplace-transport catalogue. The filter panel
// is a pure SPA with no stable form endpoint to replay, so this only works
// through the page: open the transport tab, expand the extended filters,
// type the VIN into its labelled group and apply.
type RosimDriver struct {
	cfg     *config.Config
	session *Session
	logger  logging.Logger
}

// NewRosimDriver creates the marketplace-transport driver on a shared session
func NewRosimDriver(cfg *config.Config, session *Session, logger logging.Logger) *RosimDriver {
	return &RosimDriver{
		cfg:     cfg,
		session: session,
		logger:  logger.WithField("prober", "rosim_browser"),
	}
}

// Name returns the source name for alerts
func (d *RosimDriver) Name() string {
	return scraper.RosimSourceName
}

// Probe searches the catalogue by VIN. The site has no plate filter, so a
// missing VIN ends the probe immediately.
func (d *RosimDriver) Probe(ctx context.Context, ident models.Identifier) models.Verdict {
	baseURL := d.cfg.Sites.RosimURL

	vin := strings.TrimSpace(ident.VIN)
	if vin == "" {
		return models.NotFound(baseURL, "VIN not set")
	}

	if err := d.session.Navigate(ctx, baseURL); err != nil {
		d.logger.Error("Navigation failed", map[string]interface{}{"error": err.Error()})
		return models.NotFound(baseURL, utils.NewNetworkError(err.Error()).Error())
	}

	// Tab and filter toggle are optional: deep links can land with the
	// transport tab active and the extended panel already open.
	d.clickTransportTab()
	d.expandFilters()

	input, err := d.findVINInput()
	if err != nil {
		d.logger.Warn("VIN filter input not found", map[string]interface{}{"error": err.Error()})
		return models.NotFound(baseURL, utils.NewUIError(fmt.Sprintf("could not find VIN filter input: %v", err)).Error())
	}

	if err := rod.Try(func() {
		input.MustWaitVisible()
		input.MustSelectAllText().MustInput("")
		input.MustInput(vin)
		time.Sleep(300 * time.Millisecond)
		d.session.Page().MustElement(applyButtonSelector).MustClick()
	}); err != nil {
		d.logger.Warn("Failed to submit VIN filter", map[string]interface{}{"error": err.Error()})
		return models.NotFound(baseURL, utils.NewUIError(fmt.Sprintf("failed to submit VIN filter: %v", err)).Error())
	}
	d.session.WaitSettled()

	return d.readResults()
}

// clickTransportTab activates the transport category tab when it is present
// and not already selected.
func (d *RosimDriver) clickTransportTab() {
	err := rod.Try(func() {
		page := d.session.Page()
		if tab, _ := page.Timeout(5 * time.Second).ElementR(filterTabSelector, "Транспорт"); tab != nil {
			tab.MustClick()
			time.Sleep(500 * time.Millisecond)
		}
	})
	if err != nil {
		d.logger.Debug("Transport tab not clicked", map[string]interface{}{"error": err.Error()})
	}
}

// expandFilters opens the extended filter panel that hides the VIN field
func (d *RosimDriver) expandFilters() {
	err := rod.Try(func() {
		page := d.session.Page()
		if btn, _ := page.Timeout(5 * time.Second).ElementR(showFiltersSelector, "Дополнительные"); btn != nil {
			btn.MustClick()
			time.Sleep(500 * time.Millisecond)
		}
	})
	if err != nil {
		d.logger.Debug("Extended filters toggle not clicked", map[string]interface{}{"error": err.Error()})
	}
}

// findVINInput walks the filter groups inside the vehicle card and picks the
// input under the heading naming the identification number. The card has no
// stable per-field identifiers, only these headings.
func (d *RosimDriver) findVINInput() (*rod.Element, error) {
	page := d.session.Page()

	if err := rod.Try(func() {
		page.Timeout(15 * time.Second).MustElement(vehicleCardSelector)
	}); err != nil {
		return nil, fmt.Errorf("vehicle filter card did not appear: %w", err)
	}

	groups, err := page.Elements(fieldFilterSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to list filter groups: %w", err)
	}

	for _, group := range groups {
		has, _, err := group.HasR("h4", vinGroupHeading)
		if err != nil || !has {
			continue
		}
		input, err := group.Element("input.input")
		if err != nil {
			return nil, fmt.Errorf("VIN group has no input field: %w", err)
		}
		return input, nil
	}

	return nil, fmt.Errorf("no filter group with heading %q", vinGroupHeading)
}

// readResults interprets the results table after the filter is applied
func (d *RosimDriver) readResults() models.Verdict {
	baseURL := d.cfg.Sites.RosimURL

	var bodyText string
	err := rod.Try(func() {
		bodyText = d.session.Page().
			Timeout(10 * time.Second).
			MustElement(resultsBodySelector).
			MustText()
	})
	if err != nil {
		d.logger.Warn("Results table not found", map[string]interface{}{"error": err.Error()})
		return models.NotFound(baseURL, utils.NewUIError(fmt.Sprintf("could not read results table: %v", err)).Error())
	}

	return interpretResults(bodyText, utils.GetStringOrDefault(d.session.URL(), baseURL))
}

// interpretResults maps the results-table text to a verdict. Only the
// explicit no-objects marker clears the vehicle; any other table state,
// including an empty one, counts as a listing so a site layout change fails
// loud rather than silently reporting all-clear.
func interpretResults(bodyText, url string) models.Verdict {
	if strings.Contains(bodyText, noObjectsMarker) {
		return models.NotFound(url, "No objects found for VIN on fiol.rosim.gov.ru")
	}
	return models.FoundAt(url, "Found listing(s) for VIN on fiol.rosim.gov.ru")
}
