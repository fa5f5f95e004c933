package models

import "time"

// VulnerabilityKindExposedDataClass marks a finding derived from a sensitive
// data category exposed by at least one breach.
const VulnerabilityKindExposedDataClass = "exposed_data_class"

// Vulnerability is a finding attached to a scan. Title, Description and
// Metadata are encrypted at rest.
type Vulnerability struct {
	ID          string         `json:"id"`
	ScanID      string         `json:"scanId"`
	Kind        string         `json:"kind"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
