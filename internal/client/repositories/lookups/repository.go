// Package lookups keeps the most recent unsaved quick lookup on disk, so a
// later CLI invocation can still save it.
package lookups

import (
	"context"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

// Pending is an unsaved quick lookup result.
type Pending struct {
	Result     *models.ScanResult
	LookedUpAt time.Time
}

type Repository interface {
	// Put replaces the pending lookup.
	Put(ctx context.Context, result *models.ScanResult, at time.Time) error
	// Get returns common.ErrorNotFound when nothing is pending.
	Get(ctx context.Context) (*Pending, error)
	Clear(ctx context.Context) error
}
