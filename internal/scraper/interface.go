package scraper

import (
	"context"

	"lotwatch/pkg/models"
)

// Source names used in alerts, one per supported site.
const (
	KonfiskatSourceName = "Конфискат (konfiskat-gov.ru)"
	RosimSourceName     = "Росимущество (fiol.rosim.gov.ru)"
)

// Prober checks one marketplace site for a vehicle. Implementations never
// return an error: every failure mode inside a probe is caught and folded
// into the verdict details, so a hung page or a blocked request can degrade
// a single site's result without taking down the run.
type Prober interface {
	// Name returns the human-readable source name used in alerts
	Name() string

	// Probe searches the site for the given identifiers
	Probe(ctx context.Context, ident models.Identifier) models.Verdict
}
