// Package scans persists Scan rows. Values are stored as given; encryption
// of sensitive columns happens in the storage layer.
package scans

import (
	"context"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, scan *models.Scan) (*models.Scan, error)
	GetByID(ctx context.Context, id string) (*models.Scan, error)
	GetLatestByUserID(ctx context.Context, userID string) (*models.Scan, error)

	// ListByUserID returns the user's scans newest first. A limit <= 0
	// means no limit.
	ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Scan, error)

	UpdateAnalysis(ctx context.Context, id string, summary *string, recommendations []string, at time.Time) error
}
