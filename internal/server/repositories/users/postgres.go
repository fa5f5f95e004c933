package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/dbx"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, COALESCE(email, ''), last_manual_lookup_at, created_at FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &last, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if last.Valid {
		t := last.Time
		user.LastManualLookupAt = &t
	}

	return user, nil
}

// ClaimManualLookup is a single upsert so concurrent claims for one user
// serialize on the row lock; at most one of them sees a returned row.
// A user unknown to this table is created on first claim.
func (r *PostgresRepository) ClaimManualLookup(ctx context.Context, userID string, now, cutoff time.Time) (bool, error) {
	query :=
		`INSERT INTO users (id, last_manual_lookup_at)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET last_manual_lookup_at = EXCLUDED.last_manual_lookup_at
		 WHERE users.last_manual_lookup_at IS NULL OR users.last_manual_lookup_at <= $3
		 RETURNING id
		 `

	var id string
	err := r.db.QueryRowContext(ctx, query, userID, now, cutoff).Scan(&id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}

func (r *PostgresRepository) UpdateManualLookupTimestamp(ctx context.Context, userID string, at time.Time) error {
	query :=
		`UPDATE users SET last_manual_lookup_at = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, at)
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
