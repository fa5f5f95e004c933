// Package reports exports a saved scan as a JSON document to object storage
// and hands out a short-lived download link.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/google/uuid"
)

const contentType = "application/json"

// ScanReader loads a caller's scan; scans of other users are not found.
// *services.ScanService implements it.
type ScanReader interface {
	GetScan(ctx context.Context, userID, scanID string) (*models.ScanWithBreaches, error)
	GetFindings(ctx context.Context, userID, scanID string) ([]*models.Vulnerability, error)
}

type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Report is the exported document.
type Report struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Scan        *models.ScanWithBreaches `json:"scan"`
	Findings    []*models.Vulnerability  `json:"findings"`
}

// Export describes an uploaded report.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ReportService struct {
	scans    ScanReader
	objects  ObjectStore
	validity time.Duration
	now      func() time.Time
	logger   logging.Logger
}

func NewReportService(scans ScanReader, objects ObjectStore, validity time.Duration, logger logging.Logger) *ReportService {
	if validity <= 0 {
		validity = 15 * time.Minute
	}
	return &ReportService{
		scans:    scans,
		objects:  objects,
		validity: validity,
		now:      time.Now,
		logger:   logger.With("module", "reports"),
	}
}

// StorageKey returns reports/<user>/<yyyy>/<mm>/<dd>/<uuid>.json.
func StorageKey(userID string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("reports/%s/%04d/%02d/%02d/%s.json", userID, at.Year(), int(at.Month()), at.Day(), uuid.New())
}

func (s *ReportService) Export(ctx context.Context, userID, scanID string) (*Export, error) {
	scan, err := s.scans.GetScan(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}
	findings, err := s.scans.GetFindings(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	body, err := json.MarshalIndent(&Report{GeneratedAt: now.UTC(), Scan: scan, Findings: findings}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding report: %w", err)
	}

	key := StorageKey(userID, now)
	if err := s.objects.Put(ctx, key, body, contentType); err != nil {
		s.logger.Error(ctx, "report upload failed", "scan_id", scanID, "error", err)
		return nil, fmt.Errorf("error uploading report: %w", err)
	}

	url, err := s.objects.PresignGet(ctx, key, s.validity)
	if err != nil {
		return nil, fmt.Errorf("error signing report link: %w", err)
	}

	s.logger.Info(ctx, "report exported", "user_id", userID, "scan_id", scanID, "key", key)
	return &Export{Key: key, URL: url, ExpiresAt: now.Add(s.validity)}, nil
}
