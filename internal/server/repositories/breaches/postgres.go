package breaches

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/darktrack/internal/dbx"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *PostgresRepository) CreateMany(ctx context.Context, scanID string, breaches []*models.Breach) ([]*models.Breach, error) {
	query :=
		`INSERT INTO breaches (scan_id, name, domain, breach_date, added_date, modified_date, pwn_count,
		 description, data_classes, is_verified, is_fabricated, is_sensitive, is_retired, is_spam_list,
		 is_malware, severity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at
		 `

	result := make([]*models.Breach, 0, len(breaches))

	for _, b := range breaches {
		classes := b.DataClasses
		if classes == nil {
			classes = []string{}
		}
		dc, err := json.Marshal(classes)
		if err != nil {
			return nil, err
		}

		b.ScanID = scanID
		err = r.db.QueryRowContext(ctx, query,
			scanID, b.Name, nullable(b.Domain), nullable(b.BreachDate), nullable(b.AddedDate), nullable(b.ModifiedDate),
			b.PwnCount, nullable(b.Description), string(dc),
			flag(b.IsVerified), flag(b.IsFabricated), flag(b.IsSensitive), flag(b.IsRetired), flag(b.IsSpamList),
			flag(b.IsMalware), string(b.Severity)).Scan(&b.ID, &b.CreatedAt)

		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		result = append(result, b)
	}

	return result, nil
}

func (r *PostgresRepository) ListByScanID(ctx context.Context, scanID string) ([]*models.Breach, error) {
	query :=
		`SELECT id, scan_id, name, domain, breach_date, added_date, modified_date, pwn_count,
		 description, data_classes, is_verified, is_fabricated, is_sensitive, is_retired, is_spam_list,
		 is_malware, severity, created_at
		 FROM breaches
		 WHERE scan_id = $1
		 ORDER BY pwn_count DESC, id
		 `

	rows, err := r.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Breach, 0)

	for rows.Next() {
		b := &models.Breach{}
		var (
			domain, breachDate, addedDate, modifiedDate, description sql.NullString
			dataClasses                                              []byte
			verified, fabricated, sensitive, retired, spam, malware  int
			severity                                                 string
		)

		if err := rows.Scan(&b.ID, &b.ScanID, &b.Name, &domain, &breachDate, &addedDate, &modifiedDate, &b.PwnCount,
			&description, &dataClasses, &verified, &fabricated, &sensitive, &retired, &spam,
			&malware, &severity, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		b.Domain = domain.String
		b.BreachDate = breachDate.String
		b.AddedDate = addedDate.String
		b.ModifiedDate = modifiedDate.String
		b.Description = description.String
		b.IsVerified = verified != 0
		b.IsFabricated = fabricated != 0
		b.IsSensitive = sensitive != 0
		b.IsRetired = retired != 0
		b.IsSpamList = spam != 0
		b.IsMalware = malware != 0
		b.Severity = models.Severity(severity)

		b.DataClasses = []string{}
		if len(dataClasses) > 0 {
			if err := json.Unmarshal(dataClasses, &b.DataClasses); err != nil {
				return nil, fmt.Errorf("data_classes: %w", err)
			}
		}

		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
