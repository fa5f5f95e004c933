package storage

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/dbx"
	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/vulnerabilities"
)

// EncryptedStore is the PostgreSQL ScanStore. Sensitive columns are
// encrypted before they reach a repository and decrypted on every read.
type EncryptedStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      FieldCipher
	logger      logging.Logger
}

func NewEncryptedStore(db *sql.DB, m repomanager.RepositoryManager, c FieldCipher, logger logging.Logger) *EncryptedStore {
	return &EncryptedStore{db: db, repomanager: m, cipher: c, logger: logger.With("module", "storage")}
}

var _ ScanStore = (*EncryptedStore)(nil)

func (s *EncryptedStore) encryptScan(scan *models.Scan) (*models.Scan, error) {
	row := cloneScan(scan)

	var err error
	if row.Email, err = s.cipher.Encrypt(scan.Email); err != nil {
		return nil, err
	}
	if scan.AISummary != nil {
		enc, err := s.cipher.Encrypt(*scan.AISummary)
		if err != nil {
			return nil, err
		}
		row.AISummary = &enc
	}
	return row, nil
}

func (s *EncryptedStore) decryptScan(row *models.Scan) *models.Scan {
	row.Email = s.cipher.Decrypt(row.Email)
	if row.AISummary != nil {
		v := s.cipher.Decrypt(*row.AISummary)
		row.AISummary = &v
	}
	return row
}

func (s *EncryptedStore) encryptBreaches(records []*models.BreachRecord) ([]*models.Breach, error) {
	rows := make([]*models.Breach, 0, len(records))
	for _, r := range records {
		b := &models.Breach{BreachRecord: cloneRecord(r)}
		enc, err := s.cipher.Encrypt(r.Description)
		if err != nil {
			return nil, err
		}
		b.Description = enc
		rows = append(rows, b)
	}
	return rows, nil
}

func (s *EncryptedStore) decryptBreach(b *models.Breach) *models.Breach {
	b.Description = s.cipher.Decrypt(b.Description)
	return b
}

func (s *EncryptedStore) encryptVulnerabilities(findings []*models.Vulnerability) ([]*vulnerabilities.Record, error) {
	rows := make([]*vulnerabilities.Record, 0, len(findings))
	for _, v := range findings {
		title, err := s.cipher.Encrypt(v.Title)
		if err != nil {
			return nil, err
		}
		desc, err := s.cipher.Encrypt(v.Description)
		if err != nil {
			return nil, err
		}
		var meta string
		if v.Metadata != nil {
			if meta, err = s.cipher.EncryptObject(v.Metadata); err != nil {
				return nil, err
			}
		}
		rows = append(rows, &vulnerabilities.Record{
			Kind: v.Kind, Severity: string(v.Severity), Title: title, Description: desc, MetadataEnc: meta,
		})
	}
	return rows, nil
}

func (s *EncryptedStore) decryptVulnerability(ctx context.Context, r *vulnerabilities.Record) *models.Vulnerability {
	v := &models.Vulnerability{
		ID:          r.ID,
		ScanID:      r.ScanID,
		Kind:        r.Kind,
		Severity:    models.Severity(r.Severity),
		Title:       s.cipher.Decrypt(r.Title),
		Description: s.cipher.Decrypt(r.Description),
		CreatedAt:   r.CreatedAt,
	}
	if r.MetadataEnc != "" {
		var meta map[string]any
		if err := s.cipher.DecryptObject(r.MetadataEnc, &meta); err != nil {
			s.logger.Warn(ctx, "unreadable vulnerability metadata", "vulnerability_id", r.ID, "error", err)
		} else {
			v.Metadata = meta
		}
	}
	return v
}

func sortByPwnCount(breaches []*models.Breach) {
	slices.SortStableFunc(breaches, func(a, b *models.Breach) int {
		switch {
		case a.PwnCount > b.PwnCount:
			return -1
		case a.PwnCount < b.PwnCount:
			return 1
		}
		return 0
	})
}

func (s *EncryptedStore) SaveScan(ctx context.Context, scan *models.Scan, records []*models.BreachRecord, findings []*models.Vulnerability) (*models.ScanWithBreaches, error) {
	row, err := s.encryptScan(scan)
	if err != nil {
		return nil, common.NewPersistenceError("encrypt scan", err)
	}
	breachRows, err := s.encryptBreaches(records)
	if err != nil {
		return nil, common.NewPersistenceError("encrypt breaches", err)
	}
	vulnRows, err := s.encryptVulnerabilities(findings)
	if err != nil {
		return nil, common.NewPersistenceError("encrypt findings", err)
	}

	var saved *models.Scan
	var savedBreaches []*models.Breach

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if saved, err = s.repomanager.Scans(tx).Create(ctx, row); err != nil {
			return err
		}
		if savedBreaches, err = s.repomanager.Breaches(tx).CreateMany(ctx, saved.ID, breachRows); err != nil {
			return err
		}
		if _, err = s.repomanager.Vulnerabilities(tx).CreateMany(ctx, saved.ID, vulnRows); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, common.NewPersistenceError("save scan", err)
	}

	result := &models.ScanWithBreaches{Scan: s.decryptScan(saved), Breaches: make([]*models.Breach, 0, len(savedBreaches))}
	for _, b := range savedBreaches {
		result.Breaches = append(result.Breaches, s.decryptBreach(b))
	}
	sortByPwnCount(result.Breaches)

	return result, nil
}

func (s *EncryptedStore) CreateScan(ctx context.Context, scan *models.Scan) (*models.Scan, error) {
	row, err := s.encryptScan(scan)
	if err != nil {
		return nil, common.NewPersistenceError("encrypt scan", err)
	}
	saved, err := s.repomanager.Scans(s.db).Create(ctx, row)
	if err != nil {
		return nil, common.NewPersistenceError("create scan", err)
	}
	return s.decryptScan(saved), nil
}

func (s *EncryptedStore) CreateBreaches(ctx context.Context, scanID string, records []*models.BreachRecord) ([]*models.Breach, error) {
	if len(records) == 0 {
		return []*models.Breach{}, nil
	}
	rows, err := s.encryptBreaches(records)
	if err != nil {
		return nil, common.NewPersistenceError("encrypt breaches", err)
	}
	saved, err := s.repomanager.Breaches(s.db).CreateMany(ctx, scanID, rows)
	if err != nil {
		return nil, common.NewPersistenceError("create breaches", err)
	}
	for _, b := range saved {
		s.decryptBreach(b)
	}
	return saved, nil
}

func (s *EncryptedStore) CreateVulnerabilities(ctx context.Context, scanID string, findings []*models.Vulnerability) ([]*models.Vulnerability, error) {
	if len(findings) == 0 {
		return []*models.Vulnerability{}, nil
	}
	rows, err := s.encryptVulnerabilities(findings)
	if err != nil {
		return nil, common.NewPersistenceError("encrypt findings", err)
	}
	saved, err := s.repomanager.Vulnerabilities(s.db).CreateMany(ctx, scanID, rows)
	if err != nil {
		return nil, common.NewPersistenceError("create findings", err)
	}
	result := make([]*models.Vulnerability, 0, len(saved))
	for _, r := range saved {
		result = append(result, s.decryptVulnerability(ctx, r))
	}
	return result, nil
}

func (s *EncryptedStore) GetScanByID(ctx context.Context, id string) (*models.Scan, error) {
	scan, err := s.repomanager.Scans(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decryptScan(scan), nil
}

func (s *EncryptedStore) GetLatestScanByUserID(ctx context.Context, userID string) (*models.Scan, error) {
	scan, err := s.repomanager.Scans(s.db).GetLatestByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.decryptScan(scan), nil
}

func (s *EncryptedStore) GetScansByUserID(ctx context.Context, userID string) ([]*models.Scan, error) {
	list, err := s.repomanager.Scans(s.db).ListByUserID(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	for _, scan := range list {
		s.decryptScan(scan)
	}
	return list, nil
}

func (s *EncryptedStore) GetRecentScansWithBreaches(ctx context.Context, userID string, limit int) ([]*models.ScanWithBreaches, error) {
	list, err := s.repomanager.Scans(s.db).ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ScanWithBreaches, 0, len(list))
	for _, scan := range list {
		breaches, err := s.GetBreachesByScanID(ctx, scan.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.ScanWithBreaches{Scan: s.decryptScan(scan), Breaches: breaches})
	}
	return result, nil
}

func (s *EncryptedStore) GetBreachesByScanID(ctx context.Context, scanID string) ([]*models.Breach, error) {
	list, err := s.repomanager.Breaches(s.db).ListByScanID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	for _, b := range list {
		s.decryptBreach(b)
	}
	return list, nil
}

func (s *EncryptedStore) GetVulnerabilitiesByScanID(ctx context.Context, scanID string) ([]*models.Vulnerability, error) {
	rows, err := s.repomanager.Vulnerabilities(s.db).ListByScanID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	result := make([]*models.Vulnerability, 0, len(rows))
	for _, r := range rows {
		result = append(result, s.decryptVulnerability(ctx, r))
	}
	return result, nil
}

func (s *EncryptedStore) UpdateScanAnalysis(ctx context.Context, scanID string, analysis models.Analysis, at time.Time) error {
	enc, err := s.cipher.Encrypt(analysis.Summary)
	if err != nil {
		return common.NewPersistenceError("encrypt analysis", err)
	}
	var summary *string
	if enc != "" {
		summary = &enc
	}

	err = s.repomanager.Scans(s.db).UpdateAnalysis(ctx, scanID, summary, cloneStrings(analysis.Recommendations), at)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return common.NewPersistenceError("update analysis", err)
	}
	return nil
}

func (s *EncryptedStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

func (s *EncryptedStore) ClaimManualLookup(ctx context.Context, userID string, now, cutoff time.Time) (bool, error) {
	return s.repomanager.Users(s.db).ClaimManualLookup(ctx, userID, now, cutoff)
}

func (s *EncryptedStore) UpdateUserManualLookupTimestamp(ctx context.Context, userID string, at time.Time) error {
	return s.repomanager.Users(s.db).UpdateManualLookupTimestamp(ctx, userID, at)
}
