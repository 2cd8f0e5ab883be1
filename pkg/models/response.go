package models

import "time"

// CheckRequest is the body of an on-demand check. Empty fields fall back to
// the identifiers from configuration.
type CheckRequest struct {
	VIN   string `json:"vin,omitempty"`
	Plate string `json:"plate,omitempty"`
}

// CheckResponse represents the response to a check request.
type CheckResponse struct {
	Success        bool               `json:"success"`
	RequestID      string             `json:"request_id"`
	Mode           string             `json:"mode,omitempty"`
	Found          bool               `json:"found"`
	Findings       []Finding          `json:"findings,omitempty"`
	Verdicts       map[string]Verdict `json:"verdicts,omitempty"`
	Error          string             `json:"error,omitempty"`
	ProcessingTime time.Duration      `json:"processing_time"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
