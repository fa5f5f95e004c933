package lookups

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/dbx"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, result *models.ScanResult, at time.Time) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode lookup: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pending_lookups (id, email, result, looked_up_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, result = excluded.result, looked_up_at = excluded.looked_up_at
	`, result.Email, string(body), at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store pending lookup: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context) (*Pending, error) {
	var body, at string
	err := r.db.QueryRowContext(ctx, `SELECT result, looked_up_at FROM pending_lookups WHERE id = 1`).Scan(&body, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending lookup: %w", err)
	}

	p := &Pending{Result: &models.ScanResult{}}
	if err := json.Unmarshal([]byte(body), p.Result); err != nil {
		return nil, fmt.Errorf("failed to decode pending lookup: %w", err)
	}
	if p.LookedUpAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return nil, fmt.Errorf("failed to decode pending lookup time: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_lookups`); err != nil {
		return fmt.Errorf("failed to clear pending lookup: %w", err)
	}
	return nil
}
