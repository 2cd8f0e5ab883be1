package models

import "time"

// Verdict is the terminal result of one site probe. It is created once and
// never mutated: Found=true means URL points at the page state where the
// match was observed and Details names the matched candidate; Found=false
// carries a human-readable reason (no token, no match, blocked, error).
type Verdict struct {
	Found   bool   `json:"found"`
	URL     string `json:"url"`
	Details string `json:"details"`
}

// NotFound builds a negative verdict with the given reason.
func NotFound(url, details string) Verdict {
	return Verdict{Found: false, URL: url, Details: details}
}

// FoundAt builds a positive verdict pointing at the matched page.
func FoundAt(url, details string) Verdict {
	return Verdict{Found: true, URL: url, Details: details}
}

// Finding identifies one source that currently lists the vehicle. The
// notifier turns the list of findings into an alert message.
type Finding struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CheckResult aggregates the verdicts of one full check run.
type CheckResult struct {
	RequestID      string             `json:"request_id"`
	Identifier     Identifier         `json:"identifier"`
	Mode           string             `json:"mode"` // "browser" or "http"
	Verdicts       map[string]Verdict `json:"verdicts"`
	Findings       []Finding          `json:"findings,omitempty"`
	ProcessingTime time.Duration      `json:"processing_time"`
}

// AnyFound reports whether at least one site produced a positive verdict.
func (r *CheckResult) AnyFound() bool {
	return len(r.Findings) > 0
}
