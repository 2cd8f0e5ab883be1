package models

import "strings"

// Identifier holds the vehicle identifiers a check searches for. Both fields
// are optional free-form strings, but at least one must be non-empty for a
// check to do any work.
type Identifier struct {
	VIN   string `json:"vin,omitempty"`
	Plate string `json:"plate,omitempty"`
}

// IsEmpty reports whether neither identifier is set.
func (id Identifier) IsEmpty() bool {
	return strings.TrimSpace(id.VIN) == "" && strings.TrimSpace(id.Plate) == ""
}

// Queries returns the ordered search candidates: VIN first, then the plate
// when it differs from the VIN. The order only affects which candidate gets
// named in the verdict details; found/not-found is order independent.
func (id Identifier) Queries() []string {
	var queries []string
	vin := strings.TrimSpace(id.VIN)
	plate := strings.TrimSpace(id.Plate)
	if vin != "" {
		queries = append(queries, vin)
	}
	if plate != "" && plate != vin {
		queries = append(queries, plate)
	}
	return queries
}
