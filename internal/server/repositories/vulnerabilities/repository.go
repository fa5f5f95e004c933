// Package vulnerabilities persists the findings derived for a scan.
package vulnerabilities

import (
	"context"
	"time"
)

// Record is a vulnerabilities row. Title, Description and MetadataEnc hold
// whatever the caller stored, ciphertext in practice.
type Record struct {
	ID          string
	ScanID      string
	Kind        string
	Severity    string
	Title       string
	Description string
	MetadataEnc string
	CreatedAt   time.Time
}

type Repository interface {
	CreateMany(ctx context.Context, scanID string, records []*Record) ([]*Record, error)
	ListByScanID(ctx context.Context, scanID string) ([]*Record, error)
}
