// Package breaches persists the Breach rows of a scan.
package breaches

import (
	"context"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type Repository interface {
	// CreateMany inserts every breach under scanID. An empty input is a
	// no-op returning an empty slice.
	CreateMany(ctx context.Context, scanID string, breaches []*models.Breach) ([]*models.Breach, error)

	// ListByScanID returns breaches ordered by pwn count, largest first.
	ListByScanID(ctx context.Context, scanID string) ([]*models.Breach, error)
}
