package breaches

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+breaches\s*\(scan_id,\s*name,.*is_malware,\s*severity\)\s*VALUES\s*\(\$1,.*\$16\)\s*RETURNING\s+id,\s*created_at\s*$`
	listQuery   = `(?s)^SELECT\s+id,\s*scan_id,.*FROM\s+breaches\s+WHERE\s+scan_id\s*=\s*\$1\s+ORDER\s+BY\s+pwn_count\s+DESC,\s*id\s*$`
)

var breachColumns = []string{"id", "scan_id", "name", "domain", "breach_date", "added_date", "modified_date", "pwn_count",
	"description", "data_classes", "is_verified", "is_fabricated", "is_sensitive", "is_retired", "is_spam_list",
	"is_malware", "severity", "created_at"}

func TestCreateMany_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	got, err := repo.CreateMany(context.Background(), "s-1", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMany_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	created := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("s-1", "LinkedIn", "linkedin.com", "2012-05-05", nil, nil, int64(1_000_001),
			"enc:v1:desc", `["Email addresses","Passwords"]`, 1, 0, 1, 0, 0, 0, "high").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("b-1", created))
	mock.ExpectQuery(insertQuery).
		WithArgs("s-1", "Adobe", nil, nil, nil, nil, int64(500_000),
			nil, `[]`, 0, 0, 0, 0, 0, 0, "medium").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("b-2", created))

	in := []*models.Breach{
		{BreachRecord: models.BreachRecord{
			Name: "LinkedIn", Domain: "linkedin.com", BreachDate: "2012-05-05", PwnCount: 1_000_001,
			Description: "enc:v1:desc", DataClasses: []string{"Email addresses", "Passwords"},
			IsVerified: true, IsSensitive: true, Severity: models.SeverityHigh,
		}},
		{BreachRecord: models.BreachRecord{Name: "Adobe", PwnCount: 500_000, Severity: models.SeverityMedium}},
	}

	got, err := repo.CreateMany(context.Background(), "s-1", in)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b-1", got[0].ID)
	assert.Equal(t, "s-1", got[0].ScanID)
	assert.Equal(t, "b-2", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMany_StopsAtFirstError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("constraint violated"))

	_, err := repo.CreateMany(context.Background(), "s-1", []*models.Breach{
		{BreachRecord: models.BreachRecord{Name: "A"}},
		{BreachRecord: models.BreachRecord{Name: "B"}},
	})
	if err == nil || !regexp.MustCompile(`db error: .*constraint violated`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByScanID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	created := time.Now()

	mock.ExpectQuery(listQuery).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(breachColumns).
			AddRow("b-1", "s-1", "LinkedIn", "linkedin.com", "2012-05-05", nil, nil, int64(1_000_001),
				"enc:v1:desc", []byte(`["Passwords"]`), 1, 0, 1, 0, 0, 0, "high", created).
			AddRow("b-2", "s-1", "Adobe", nil, nil, nil, nil, int64(500_000),
				nil, []byte(`[]`), 0, 0, 0, 1, 1, 1, "medium", created))

	got, err := repo.ListByScanID(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "LinkedIn", got[0].Name)
	assert.Equal(t, "linkedin.com", got[0].Domain)
	assert.Equal(t, "enc:v1:desc", got[0].Description)
	assert.Equal(t, []string{"Passwords"}, got[0].DataClasses)
	assert.True(t, got[0].IsVerified)
	assert.True(t, got[0].IsSensitive)
	assert.False(t, got[0].IsRetired)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)

	assert.Equal(t, "", got[1].Domain)
	assert.Equal(t, []string{}, got[1].DataClasses)
	assert.True(t, got[1].IsRetired)
	assert.True(t, got[1].IsSpamList)
	assert.True(t, got[1].IsMalware)
}

func TestListByScanID_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectQuery(listQuery).WillReturnError(errors.New("db down"))

		_, err := repo.ListByScanID(context.Background(), "s-1")
		require.Error(t, err)
	})

	t.Run("bad data classes", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectQuery(listQuery).
			WillReturnRows(sqlmock.NewRows(breachColumns).
				AddRow("b-1", "s-1", "X", nil, nil, nil, nil, int64(1),
					nil, []byte(`{`), 0, 0, 0, 0, 0, 0, "low", time.Now()))

		_, err := repo.ListByScanID(context.Background(), "s-1")
		require.Error(t, err)
	})
}
