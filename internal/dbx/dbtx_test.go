package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS scans (id TEXT PRIMARY KEY, breach_count INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS breaches (id TEXT PRIMARY KEY, scan_id TEXT NOT NULL, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func insertScan(ctx context.Context, tx DBTX, id string, breaches ...string) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO scans(id, breach_count) VALUES (?, ?)`, id, len(breaches)); err != nil {
		return err
	}
	for i, name := range breaches {
		if _, err := tx.ExecContext(ctx, `INSERT INTO breaches(id, scan_id, name) VALUES (?, ?, ?)`, fmt.Sprintf("%s-%d", id, i), id, name); err != nil {
			return err
		}
	}
	return nil
}

func TestWithTx_CommitsScanAndBreaches(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insertScan(ctx, tx, "s1", "LinkedIn", "Adobe")
	})
	require.NoError(t, err)
	require.Equal(t, 1, count(t, db, "scans"))
	require.Equal(t, 2, count(t, db, "breaches"))
}

func TestWithTx_RollsBackScanWhenBreachInsertFails(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if err := insertScan(ctx, tx, "s1", "LinkedIn"); err != nil {
			return err
		}
		// duplicate primary key
		_, err := tx.ExecContext(ctx, `INSERT INTO breaches(id, scan_id, name) VALUES ('s1-0', 's1', 'Adobe')`)
		return err
	})
	require.Error(t, err)

	require.Equal(t, 0, count(t, db, "scans"), "scan must not survive a failed breach insert")
	require.Equal(t, 0, count(t, db, "breaches"))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertScan(ctx, tx, "s1"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, count(t, db, "scans"))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, count(t, db, "scans"), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertScan(ctx, tx, "s1", "LinkedIn"))
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
	require.False(t, called)
}
