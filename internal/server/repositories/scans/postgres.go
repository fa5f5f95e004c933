package scans

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

const columns = `id, user_id, email, breach_count, profiles_detected, risk_score,
		 secured_data_percentage, ai_summary, ai_recommendations, ai_generated_at, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*models.Scan, error) {
	s := &models.Scan{}
	var (
		summary sql.NullString
		recs    []byte
		genAt   sql.NullTime
	)

	if err := row.Scan(&s.ID, &s.UserID, &s.Email, &s.BreachCount, &s.ProfilesDetected, &s.RiskScore,
		&s.SecuredDataPercentage, &summary, &recs, &genAt, &s.CreatedAt); err != nil {
		return nil, err
	}

	if summary.Valid {
		v := summary.String
		s.AISummary = &v
	}
	if genAt.Valid {
		v := genAt.Time
		s.AIGeneratedAt = &v
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &s.AIRecommendations); err != nil {
			return nil, fmt.Errorf("ai_recommendations: %w", err)
		}
	}

	return s, nil
}

func recommendationsParam(recs []string) (any, error) {
	if recs == nil {
		return nil, nil
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, scan *models.Scan) (*models.Scan, error) {
	query :=
		`INSERT INTO scans (user_id, email, breach_count, profiles_detected, risk_score,
		 secured_data_percentage, ai_summary, ai_recommendations, ai_generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at
		 `

	recs, err := recommendationsParam(scan.AIRecommendations)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, query,
		scan.UserID, scan.Email, scan.BreachCount, scan.ProfilesDetected, scan.RiskScore,
		scan.SecuredDataPercentage, scan.AISummary, recs, scan.AIGeneratedAt).Scan(&scan.ID, &scan.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return scan, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Scan, error) {
	query := `SELECT ` + columns + ` FROM scans
		 WHERE id = $1
		 `

	s, err := scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) GetLatestByUserID(ctx context.Context, userID string) (*models.Scan, error) {
	query := `SELECT ` + columns + ` FROM scans
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1
		 `

	s, err := scanRow(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Scan, error) {
	query := `SELECT ` + columns + ` FROM scans
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2
		 `

	// LIMIT NULL is no limit
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.db.QueryContext(ctx, query, userID, lim)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Scan, 0)
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateAnalysis(ctx context.Context, id string, summary *string, recommendations []string, at time.Time) error {
	query :=
		`UPDATE scans SET ai_summary = $2, ai_recommendations = $3, ai_generated_at = $4
		 WHERE id = $1
		 `

	recs, err := recommendationsParam(recommendations)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, id, summary, recs, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
