package lookups

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE pending_lookups (
  id           INTEGER PRIMARY KEY CHECK (id = 1),
  email        TEXT NOT NULL,
  result       TEXT NOT NULL,
  looked_up_at TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func sample(email string) *models.ScanResult {
	return &models.ScanResult{
		Email:                 email,
		Breaches:              []*models.BreachRecord{{Name: "Adobe", PwnCount: 500_000, DataClasses: []string{"Emails"}, Severity: models.SeverityMedium}},
		BreachCount:           1,
		ProfilesDetected:      1,
		RiskScore:             35,
		SecuredDataPercentage: 65,
		Analysis:              models.Analysis{Summary: "s", Recommendations: []string{"r"}},
	}
}

func TestGet_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPutGet_ReplacesPrevious(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Put(ctx, sample("first@example.com"), at))
	require.NoError(t, r.Put(ctx, sample("second@example.com"), at.Add(time.Hour)))

	p, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample("second@example.com"), p.Result)
	assert.True(t, p.LookedUpAt.Equal(at.Add(time.Hour)))
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sample("a@example.com"), time.Now()))
	require.NoError(t, r.Clear(ctx))
	require.NoError(t, r.Clear(ctx))

	_, err := r.Get(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Get(ctx)
	require.ErrorContains(t, err, "failed to get pending lookup")

	err = r.Put(ctx, sample("a@example.com"), time.Now())
	require.ErrorContains(t, err, "failed to store pending lookup")

	err = r.Clear(ctx)
	require.ErrorContains(t, err, "failed to clear pending lookup")
}
