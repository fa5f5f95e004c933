package vulnerabilities

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/darktrack/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMany(ctx context.Context, scanID string, records []*Record) ([]*Record, error) {
	query :=
		`INSERT INTO vulnerabilities (scan_id, kind, severity, title, description, metadata_enc)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	result := make([]*Record, 0, len(records))

	for _, v := range records {
		var meta any
		if v.MetadataEnc != "" {
			meta = v.MetadataEnc
		}

		v.ScanID = scanID
		err := r.db.QueryRowContext(ctx, query,
			scanID, v.Kind, v.Severity, v.Title, v.Description, meta).Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		result = append(result, v)
	}

	return result, nil
}

func (r *PostgresRepository) ListByScanID(ctx context.Context, scanID string) ([]*Record, error) {
	query :=
		`SELECT id, scan_id, kind, severity, title, description, metadata_enc, created_at
		 FROM vulnerabilities
		 WHERE scan_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*Record, 0)

	for rows.Next() {
		v := &Record{}
		var meta sql.NullString
		if err := rows.Scan(&v.ID, &v.ScanID, &v.Kind, &v.Severity, &v.Title, &v.Description, &meta, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		v.MetadataEnc = meta.String
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
