package models

import "time"

// Scan is the persisted result of one scan operation.
// RiskScore + SecuredDataPercentage is always 100.
type Scan struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	Email                 string     `json:"email"`
	BreachCount           int        `json:"breachCount"`
	ProfilesDetected      int        `json:"profilesDetected"`
	RiskScore             int        `json:"riskScore"`
	SecuredDataPercentage int        `json:"securedDataPercentage"`
	AISummary             *string    `json:"aiSummary,omitempty"`
	AIRecommendations     []string   `json:"aiRecommendations,omitempty"`
	AIGeneratedAt         *time.Time `json:"aiGeneratedAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// ScanWithBreaches is a Scan annotated with its breaches, largest first.
type ScanWithBreaches struct {
	*Scan
	Breaches []*Breach `json:"breaches"`
}

// Analysis is the narrative attached to a scan.
type Analysis struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// ScanResult is the outcome of the scan pipeline before (or without)
// persistence, as returned by a quick lookup.
type ScanResult struct {
	Email                 string          `json:"email"`
	Breaches              []*BreachRecord `json:"breaches"`
	BreachCount           int             `json:"breachCount"`
	ProfilesDetected      int             `json:"profilesDetected"`
	RiskScore             int             `json:"riskScore"`
	SecuredDataPercentage int             `json:"securedDataPercentage"`
	Analysis              Analysis        `json:"analysis"`
}
