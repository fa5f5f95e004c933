package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

// Client is the CLI's view of the DarkTrack scan service.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Scan(ctx context.Context, email string) (*models.ScanWithBreaches, error)
	ScanSelf(ctx context.Context) (*models.ScanWithBreaches, error)
	QuickLookup(ctx context.Context, email string) (*models.ScanResult, error)
	SaveLookup(ctx context.Context, result *models.ScanResult) (*models.ScanWithBreaches, error)
	ListScans(ctx context.Context, limit int) ([]*models.ScanWithBreaches, error)
	LatestScan(ctx context.Context) (*models.ScanWithBreaches, error)
	// GetBreaches with an empty scanID returns the latest scan's breaches.
	GetBreaches(ctx context.Context, scanID string) ([]*models.Breach, error)
	RegenerateAnalysis(ctx context.Context, scanID string) (*models.Scan, error)
	ExportReport(ctx context.Context, scanID string) (*Export, error)
}

// Export is a stored report and its short-lived download link.
type Export struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}
