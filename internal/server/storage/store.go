// Package storage is the persistence boundary of the scan pipeline. Every
// entity it returns has its sensitive fields decrypted; nothing outside this
// package sees ciphertext.
package storage

import (
	"context"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

// FieldCipher encrypts individual column values. *cryptox.Cipher implements it.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(value string) string
	EncryptObject(v any) (string, error)
	DecryptObject(value string, v any) error
}

// ScanStore is the persistence contract used by the scan service.
type ScanStore interface {
	// SaveScan writes scan, its breaches and its findings as one unit. On
	// failure nothing is written and the error is a *common.PersistenceError.
	SaveScan(ctx context.Context, scan *models.Scan, breaches []*models.BreachRecord, findings []*models.Vulnerability) (*models.ScanWithBreaches, error)

	CreateScan(ctx context.Context, scan *models.Scan) (*models.Scan, error)
	CreateBreaches(ctx context.Context, scanID string, records []*models.BreachRecord) ([]*models.Breach, error)
	CreateVulnerabilities(ctx context.Context, scanID string, findings []*models.Vulnerability) ([]*models.Vulnerability, error)

	GetScanByID(ctx context.Context, id string) (*models.Scan, error)
	GetLatestScanByUserID(ctx context.Context, userID string) (*models.Scan, error)
	GetScansByUserID(ctx context.Context, userID string) ([]*models.Scan, error)
	GetRecentScansWithBreaches(ctx context.Context, userID string, limit int) ([]*models.ScanWithBreaches, error)
	GetBreachesByScanID(ctx context.Context, scanID string) ([]*models.Breach, error)
	GetVulnerabilitiesByScanID(ctx context.Context, scanID string) ([]*models.Vulnerability, error)

	UpdateScanAnalysis(ctx context.Context, scanID string, analysis models.Analysis, at time.Time) error

	GetUser(ctx context.Context, userID string) (*models.User, error)

	// ClaimManualLookup records now as the user's last manual lookup if the
	// stored value is unset or not after cutoff, atomically across
	// processes. It reports whether the claim succeeded.
	ClaimManualLookup(ctx context.Context, userID string, now, cutoff time.Time) (bool, error)

	UpdateUserManualLookupTimestamp(ctx context.Context, userID string, at time.Time) error
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneScan(s *models.Scan) *models.Scan {
	c := *s
	c.AIRecommendations = cloneStrings(s.AIRecommendations)
	if s.AISummary != nil {
		v := *s.AISummary
		c.AISummary = &v
	}
	if s.AIGeneratedAt != nil {
		v := *s.AIGeneratedAt
		c.AIGeneratedAt = &v
	}
	return &c
}

func cloneRecord(r *models.BreachRecord) models.BreachRecord {
	c := *r
	c.DataClasses = cloneStrings(r.DataClasses)
	if c.DataClasses == nil {
		c.DataClasses = []string{}
	}
	return c
}

func cloneBreach(b *models.Breach) *models.Breach {
	c := *b
	c.BreachRecord = cloneRecord(&b.BreachRecord)
	return &c
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneVulnerability(v *models.Vulnerability) *models.Vulnerability {
	c := *v
	c.Metadata = cloneMetadata(v.Metadata)
	return &c
}
