package api

import (
	"time"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ScanRequest struct {
	Email string `json:"email"`
}

type ScanSelfRequest struct{}

type ScanResponse struct {
	Scan *models.ScanWithBreaches `json:"scan"`
}

type QuickLookupRequest struct {
	Email string `json:"email"`
}

type QuickLookupResponse struct {
	Result *models.ScanResult `json:"result"`
}

type SaveLookupRequest struct {
	Result *models.ScanResult `json:"result"`
}

// ListScansRequest asks for the newest scans; Limit <= 0 means the server
// default.
type ListScansRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListScansResponse struct {
	Scans []*models.ScanWithBreaches `json:"scans"`
}

type LatestScanRequest struct{}

// GetBreachesRequest without a ScanID returns the breaches of the latest scan.
type GetBreachesRequest struct {
	ScanID string `json:"scanId,omitempty"`
}

type GetBreachesResponse struct {
	Breaches []*models.Breach `json:"breaches"`
}

type RegenerateAnalysisRequest struct {
	ScanID string `json:"scanId"`
}

type RegenerateAnalysisResponse struct {
	Scan *models.Scan `json:"scan"`
}

type ExportReportRequest struct {
	ScanID string `json:"scanId"`
}

type ExportReportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
