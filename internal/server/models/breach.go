// Package models defines the entities produced by the scan pipeline and
// persisted by the storage layer.
package models

import "time"

// Severity is the three-level classification of a single breach record.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// BreachRecord is one exposure event reported by the breach-intelligence
// provider. Date fields are opaque provider strings.
type BreachRecord struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain,omitempty"`
	BreachDate   string   `json:"breachDate,omitempty"`
	AddedDate    string   `json:"addedDate,omitempty"`
	ModifiedDate string   `json:"modifiedDate,omitempty"`
	PwnCount     int64    `json:"pwnCount"`
	Description  string   `json:"description,omitempty"`
	DataClasses  []string `json:"dataClasses"`
	IsVerified   bool     `json:"isVerified"`
	IsFabricated bool     `json:"isFabricated"`
	IsSensitive  bool     `json:"isSensitive"`
	IsRetired    bool     `json:"isRetired"`
	IsSpamList   bool     `json:"isSpamList"`
	IsMalware    bool     `json:"isMalware"`
	Severity     Severity `json:"severity"`
}

// Breach is a persisted BreachRecord owned by a Scan.
type Breach struct {
	ID     string `json:"id"`
	ScanID string `json:"scanId"`
	BreachRecord
	CreatedAt time.Time `json:"createdAt"`
}
