package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/dmitrijs2005/darktrack/internal/server/risk"
	"github.com/dmitrijs2005/darktrack/internal/server/storage"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	DefaultLookupWindow = 24 * time.Hour

	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BreachSource reports the breaches an email appears in. It never fails;
// an unavailable provider yields an empty list.
type BreachSource interface {
	Lookup(ctx context.Context, email string) []*models.BreachRecord
}

// Narrator writes the analysis for a set of breaches. It never fails.
type Narrator interface {
	Generate(ctx context.Context, email string, records []*models.BreachRecord, score int) models.Analysis
}

type ScanService struct {
	store    storage.ScanStore
	breaches BreachSource
	narrator Narrator
	window   time.Duration
	now      func() time.Time
	logger   logging.Logger
}

func NewScanService(store storage.ScanStore, breaches BreachSource, narrator Narrator, window time.Duration, logger logging.Logger) *ScanService {
	if window <= 0 {
		window = DefaultLookupWindow
	}
	return &ScanService{
		store:    store,
		breaches: breaches,
		narrator: narrator,
		window:   window,
		now:      time.Now,
		logger:   logger.With("module", "scans"),
	}
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return "", common.NewValidationError("email", "invalid email address")
	}
	return email, nil
}

// analyze runs lookup, scoring and narration for one email.
func (s *ScanService) analyze(ctx context.Context, email string) *models.ScanResult {
	records := s.breaches.Lookup(ctx, email)
	if records == nil {
		records = []*models.BreachRecord{}
	}
	m := risk.Measure(records)
	analysis := s.narrator.Generate(ctx, email, records, m.RiskScore)

	return &models.ScanResult{
		Email:                 email,
		Breaches:              records,
		BreachCount:           m.BreachCount,
		ProfilesDetected:      m.ProfilesDetected,
		RiskScore:             m.RiskScore,
		SecuredDataPercentage: m.SecuredDataPercentage,
		Analysis:              analysis,
	}
}

func (s *ScanService) persist(ctx context.Context, userID string, r *models.ScanResult) (*models.ScanWithBreaches, error) {
	now := s.now()
	summary := r.Analysis.Summary

	scan := &models.Scan{
		UserID:                userID,
		Email:                 r.Email,
		BreachCount:           r.BreachCount,
		ProfilesDetected:      r.ProfilesDetected,
		RiskScore:             r.RiskScore,
		SecuredDataPercentage: r.SecuredDataPercentage,
		AISummary:             &summary,
		AIRecommendations:     r.Analysis.Recommendations,
		AIGeneratedAt:         &now,
	}

	saved, err := s.store.SaveScan(ctx, scan, r.Breaches, risk.Findings(r.Breaches))
	if err != nil {
		s.logger.Error(ctx, "saving scan failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "scan saved",
		"user_id", userID,
		"scan_id", saved.ID,
		"email", common.MaskEmail(r.Email),
		"breaches", saved.BreachCount,
		"risk_score", saved.RiskScore)

	return saved, nil
}

// ScanEmail scans an explicit email and saves the result.
func (s *ScanService) ScanEmail(ctx context.Context, userID, email string) (*models.ScanWithBreaches, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, s.analyze(ctx, email))
}

// ScanSelf scans the email on the caller's profile and saves the result.
func (s *ScanService) ScanSelf(ctx context.Context, userID string) (*models.ScanWithBreaches, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil, common.NewValidationError("email", "no email address on file")
	}
	return s.persist(ctx, userID, s.analyze(ctx, strings.TrimSpace(user.Email)))
}

// QuickLookup runs the pipeline without saving. At most one lookup per
// user is admitted per window; the slot is taken before any upstream call,
// so a lookup that later degrades still counts.
func (s *ScanService) QuickLookup(ctx context.Context, userID, email string) (*models.ScanResult, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	if err := s.claimLookup(ctx, userID); err != nil {
		return nil, err
	}

	result := s.analyze(ctx, email)
	s.logger.Info(ctx, "quick lookup completed",
		"user_id", userID,
		"email", common.MaskEmail(email),
		"breaches", result.BreachCount)

	return result, nil
}

func (s *ScanService) claimLookup(ctx context.Context, userID string) error {
	now := s.now()

	ok, err := s.store.ClaimManualLookup(ctx, userID, now, now.Add(-s.window))
	if err != nil {
		return fmt.Errorf("error claiming lookup quota: %w", err)
	}
	if ok {
		return nil
	}

	next := now.Add(s.window)
	user, err := s.store.GetUser(ctx, userID)
	if err == nil && user.LastManualLookupAt != nil {
		next = user.LastManualLookupAt.Add(s.window)
	}

	s.logger.Info(ctx, "quick lookup rejected", "user_id", userID, "next_available_at", next)
	return common.NewRateLimitError(next)
}

// SaveLookup persists a quick lookup result. Derived values are recomputed
// from the breach records; the caller's numbers are ignored.
func (s *ScanService) SaveLookup(ctx context.Context, userID string, result *models.ScanResult) (*models.ScanWithBreaches, error) {
	if result == nil {
		return nil, common.NewValidationError("result", "lookup result is required")
	}
	email, err := validateEmail(result.Email)
	if err != nil {
		return nil, err
	}

	records := lo.Map(lo.Compact(result.Breaches), func(r *models.BreachRecord, _ int) *models.BreachRecord {
		c := *r
		c.DataClasses = append([]string(nil), r.DataClasses...)
		c.Severity = risk.ClassifySeverity(&c)
		return &c
	})
	m := risk.Measure(records)

	return s.persist(ctx, userID, &models.ScanResult{
		Email:                 email,
		Breaches:              records,
		BreachCount:           m.BreachCount,
		ProfilesDetected:      m.ProfilesDetected,
		RiskScore:             m.RiskScore,
		SecuredDataPercentage: m.SecuredDataPercentage,
		Analysis:              result.Analysis,
	})
}

// ownedScan loads a scan and hides scans of other users as not found.
// Scan ids are UUIDs; anything else cannot exist.
func (s *ScanService) ownedScan(ctx context.Context, userID, scanID string) (*models.Scan, error) {
	if _, err := uuid.Parse(scanID); err != nil {
		return nil, common.ErrorNotFound
	}
	scan, err := s.store.GetScanByID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if scan.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return scan, nil
}

// GetScan returns one of the caller's scans with its breaches.
func (s *ScanService) GetScan(ctx context.Context, userID, scanID string) (*models.ScanWithBreaches, error) {
	scan, err := s.ownedScan(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}
	breaches, err := s.store.GetBreachesByScanID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	return &models.ScanWithBreaches{Scan: scan, Breaches: breaches}, nil
}

func (s *ScanService) GetBreachesForScan(ctx context.Context, userID, scanID string) ([]*models.Breach, error) {
	if _, err := s.ownedScan(ctx, userID, scanID); err != nil {
		return nil, err
	}
	return s.store.GetBreachesByScanID(ctx, scanID)
}

// GetLatestBreaches returns the breaches of the caller's newest scan, or an
// empty list when there is none.
func (s *ScanService) GetLatestBreaches(ctx context.Context, userID string) ([]*models.Breach, error) {
	scan, err := s.store.GetLatestScanByUserID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return []*models.Breach{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.GetBreachesByScanID(ctx, scan.ID)
}

func (s *ScanService) GetFindings(ctx context.Context, userID, scanID string) ([]*models.Vulnerability, error) {
	if _, err := s.ownedScan(ctx, userID, scanID); err != nil {
		return nil, err
	}
	return s.store.GetVulnerabilitiesByScanID(ctx, scanID)
}

// ListScans returns the caller's newest scans with breaches. A non-positive
// limit means the default page size.
func (s *ScanService) ListScans(ctx context.Context, userID string, limit int) ([]*models.ScanWithBreaches, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return s.store.GetRecentScansWithBreaches(ctx, userID, limit)
}

func (s *ScanService) LatestScan(ctx context.Context, userID string) (*models.ScanWithBreaches, error) {
	scan, err := s.store.GetLatestScanByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	breaches, err := s.store.GetBreachesByScanID(ctx, scan.ID)
	if err != nil {
		return nil, err
	}
	return &models.ScanWithBreaches{Scan: scan, Breaches: breaches}, nil
}

// RegenerateAnalysis rewrites the narrative of a saved scan from its stored
// breaches.
func (s *ScanService) RegenerateAnalysis(ctx context.Context, userID, scanID string) (*models.Scan, error) {
	scan, err := s.ownedScan(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}
	breaches, err := s.store.GetBreachesByScanID(ctx, scanID)
	if err != nil {
		return nil, err
	}

	records := lo.Map(breaches, func(b *models.Breach, _ int) *models.BreachRecord {
		r := b.BreachRecord
		return &r
	})
	analysis := s.narrator.Generate(ctx, scan.Email, records, scan.RiskScore)

	now := s.now()
	if err := s.store.UpdateScanAnalysis(ctx, scanID, analysis, now); err != nil {
		return nil, err
	}

	summary := analysis.Summary
	scan.AISummary = &summary
	scan.AIRecommendations = analysis.Recommendations
	scan.AIGeneratedAt = &now

	s.logger.Info(ctx, "analysis regenerated", "user_id", userID, "scan_id", scanID)
	return scan, nil
}
