package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/google/uuid"
)

// Operations that MemoryStore.FailOn can fail.
const (
	OpInsertScan          = "insert_scan"
	OpInsertBreach        = "insert_breach"
	OpInsertVulnerability = "insert_vulnerability"
)

type memoryScan struct {
	scan  *models.Scan
	seq   int
	vulns []*models.Vulnerability
}

// MemoryStore is an in-process ScanStore. It keeps plaintext copies and
// applies the same all-or-nothing rule to SaveScan as the database store.
// It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	scans    map[string]*memoryScan
	breaches map[string][]*models.Breach
	users    map[string]*models.User
	seq      int

	// Now stamps created rows; defaults to time.Now.
	Now func() time.Time

	// FailOn, when set, is consulted before each insert; a non-nil error
	// aborts the current unit of work.
	FailOn func(op string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scans:    make(map[string]*memoryScan),
		breaches: make(map[string][]*models.Breach),
		users:    make(map[string]*models.User),
		Now:      time.Now,
	}
}

var _ ScanStore = (*MemoryStore)(nil)

// PutUser registers or replaces a user.
func (m *MemoryStore) PutUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.users[u.ID] = &c
}

func (m *MemoryStore) fail(op string) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(op)
}

func (m *MemoryStore) stageScan(scan *models.Scan) (*models.Scan, error) {
	if err := m.fail(OpInsertScan); err != nil {
		return nil, err
	}
	s := cloneScan(scan)
	s.ID = uuid.NewString()
	s.CreatedAt = m.Now()
	return s, nil
}

func (m *MemoryStore) stageBreaches(scanID string, records []*models.BreachRecord) ([]*models.Breach, error) {
	staged := make([]*models.Breach, 0, len(records))
	for _, r := range records {
		if err := m.fail(OpInsertBreach); err != nil {
			return nil, err
		}
		staged = append(staged, &models.Breach{
			ID:           uuid.NewString(),
			ScanID:       scanID,
			BreachRecord: cloneRecord(r),
			CreatedAt:    m.Now(),
		})
	}
	return staged, nil
}

func (m *MemoryStore) stageVulnerabilities(scanID string, findings []*models.Vulnerability) ([]*models.Vulnerability, error) {
	staged := make([]*models.Vulnerability, 0, len(findings))
	for _, f := range findings {
		if err := m.fail(OpInsertVulnerability); err != nil {
			return nil, err
		}
		v := cloneVulnerability(f)
		v.ID = uuid.NewString()
		v.ScanID = scanID
		v.CreatedAt = m.Now()
		staged = append(staged, v)
	}
	return staged, nil
}

func (m *MemoryStore) commitScan(s *models.Scan) {
	m.seq++
	m.scans[s.ID] = &memoryScan{scan: s, seq: m.seq}
}

func (m *MemoryStore) SaveScan(ctx context.Context, scan *models.Scan, records []*models.BreachRecord, findings []*models.Vulnerability) (*models.ScanWithBreaches, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.stageScan(scan)
	if err != nil {
		return nil, common.NewPersistenceError("save scan", err)
	}
	breaches, err := m.stageBreaches(s.ID, records)
	if err != nil {
		return nil, common.NewPersistenceError("save scan", err)
	}
	vulns, err := m.stageVulnerabilities(s.ID, findings)
	if err != nil {
		return nil, common.NewPersistenceError("save scan", err)
	}

	m.commitScan(s)
	m.breaches[s.ID] = breaches
	m.scans[s.ID].vulns = vulns

	return &models.ScanWithBreaches{Scan: cloneScan(s), Breaches: m.sortedBreaches(s.ID)}, nil
}

func (m *MemoryStore) CreateScan(ctx context.Context, scan *models.Scan) (*models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.stageScan(scan)
	if err != nil {
		return nil, common.NewPersistenceError("create scan", err)
	}
	m.commitScan(s)
	return cloneScan(s), nil
}

func (m *MemoryStore) CreateBreaches(ctx context.Context, scanID string, records []*models.BreachRecord) ([]*models.Breach, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(records) == 0 {
		return []*models.Breach{}, nil
	}
	if _, ok := m.scans[scanID]; !ok {
		return nil, common.NewPersistenceError("create breaches", fmt.Errorf("scan %s: %w", scanID, common.ErrorNotFound))
	}

	staged, err := m.stageBreaches(scanID, records)
	if err != nil {
		return nil, common.NewPersistenceError("create breaches", err)
	}
	m.breaches[scanID] = append(m.breaches[scanID], staged...)

	out := make([]*models.Breach, 0, len(staged))
	for _, b := range staged {
		out = append(out, cloneBreach(b))
	}
	return out, nil
}

func (m *MemoryStore) CreateVulnerabilities(ctx context.Context, scanID string, findings []*models.Vulnerability) ([]*models.Vulnerability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(findings) == 0 {
		return []*models.Vulnerability{}, nil
	}
	ms, ok := m.scans[scanID]
	if !ok {
		return nil, common.NewPersistenceError("create findings", fmt.Errorf("scan %s: %w", scanID, common.ErrorNotFound))
	}

	staged, err := m.stageVulnerabilities(scanID, findings)
	if err != nil {
		return nil, common.NewPersistenceError("create findings", err)
	}
	ms.vulns = append(ms.vulns, staged...)

	out := make([]*models.Vulnerability, 0, len(staged))
	for _, v := range staged {
		out = append(out, cloneVulnerability(v))
	}
	return out, nil
}

func (m *MemoryStore) GetScanByID(ctx context.Context, id string) (*models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms, ok := m.scans[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneScan(ms.scan), nil
}

// userScans returns the user's scans newest first; ties keep reverse
// insertion order.
func (m *MemoryStore) userScans(userID string) []*memoryScan {
	var list []*memoryScan
	for _, ms := range m.scans {
		if ms.scan.UserID == userID {
			list = append(list, ms)
		}
	}
	slices.SortFunc(list, func(a, b *memoryScan) int {
		if c := b.scan.CreatedAt.Compare(a.scan.CreatedAt); c != 0 {
			return c
		}
		return b.seq - a.seq
	})
	return list
}

func (m *MemoryStore) GetLatestScanByUserID(ctx context.Context, userID string) (*models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.userScans(userID)
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return cloneScan(list[0].scan), nil
}

func (m *MemoryStore) GetScansByUserID(ctx context.Context, userID string) ([]*models.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Scan, 0)
	for _, ms := range m.userScans(userID) {
		out = append(out, cloneScan(ms.scan))
	}
	return out, nil
}

func (m *MemoryStore) GetRecentScansWithBreaches(ctx context.Context, userID string, limit int) ([]*models.ScanWithBreaches, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.userScans(userID)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	out := make([]*models.ScanWithBreaches, 0, len(list))
	for _, ms := range list {
		out = append(out, &models.ScanWithBreaches{Scan: cloneScan(ms.scan), Breaches: m.sortedBreaches(ms.scan.ID)})
	}
	return out, nil
}

func (m *MemoryStore) sortedBreaches(scanID string) []*models.Breach {
	out := make([]*models.Breach, 0, len(m.breaches[scanID]))
	for _, b := range m.breaches[scanID] {
		out = append(out, cloneBreach(b))
	}
	sortByPwnCount(out)
	return out
}

func (m *MemoryStore) GetBreachesByScanID(ctx context.Context, scanID string) ([]*models.Breach, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sortedBreaches(scanID), nil
}

func (m *MemoryStore) GetVulnerabilitiesByScanID(ctx context.Context, scanID string) ([]*models.Vulnerability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Vulnerability, 0)
	if ms, ok := m.scans[scanID]; ok {
		for _, v := range ms.vulns {
			out = append(out, cloneVulnerability(v))
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateScanAnalysis(ctx context.Context, scanID string, analysis models.Analysis, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms, ok := m.scans[scanID]
	if !ok {
		return common.ErrorNotFound
	}

	summary := analysis.Summary
	ms.scan.AISummary = &summary
	ms.scan.AIRecommendations = cloneStrings(analysis.Recommendations)
	ms.scan.AIGeneratedAt = &at
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (m *MemoryStore) ClaimManualLookup(ctx context.Context, userID string, now, cutoff time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		u = &models.User{ID: userID, CreatedAt: now}
		m.users[userID] = u
	}
	if u.LastManualLookupAt != nil && u.LastManualLookupAt.After(cutoff) {
		return false, nil
	}
	t := now
	u.LastManualLookupAt = &t
	return true, nil
}

func (m *MemoryStore) UpdateUserManualLookupTimestamp(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	t := at
	u.LastManualLookupAt = &t
	return nil
}
