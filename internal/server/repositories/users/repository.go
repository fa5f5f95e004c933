package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)

	// ClaimManualLookup atomically sets the user's last manual lookup to now
	// when it is unset or not after cutoff. It reports false when the quota
	// is still held.
	ClaimManualLookup(ctx context.Context, userID string, now, cutoff time.Time) (bool, error)

	// UpdateManualLookupTimestamp unconditionally records a manual lookup.
	UpdateManualLookupTimestamp(ctx context.Context, userID string, at time.Time) error
}
