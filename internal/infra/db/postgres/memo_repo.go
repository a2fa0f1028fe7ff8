package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/teamkaeos/signal-analyst/internal/domain/analysis"
	domain "github.com/teamkaeos/signal-analyst/internal/domain/memo"
)

type MemoRepository struct{ db *sql.DB }

func NewMemoRepository(db *sql.DB) *MemoRepository { return &MemoRepository{db: db} }

const memoColumns = `id, tenant_id, generated_at, status, rating, documents_json, record_json, artifact_url, failure, duration_ms`

// Save insert/update Memo record
func (r *MemoRepository) Save(ctx context.Context, m *domain.Memo) error {
	const q = `
INSERT INTO investment_memos
(id, tenant_id, generated_at, status, rating, documents_json, record_json, artifact_url, failure, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 rating = EXCLUDED.rating,
 documents_json = EXCLUDED.documents_json,
 record_json = EXCLUDED.record_json,
 artifact_url = EXCLUDED.artifact_url,
 failure = EXCLUDED.failure,
 duration_ms = EXCLUDED.duration_ms;`

	tenant := stringOrDash(m.TenantID)
	status := stringOrDash(string(m.Status))
	generated := m.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	recordJSON, err := json.Marshal(m.Record)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	documentsJSON, err := json.Marshal(m.Documents)
	if err != nil {
		return fmt.Errorf("marshaling documents: %w", err)
	}

	var rating sql.NullInt64
	if m.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*m.Rating), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, q,
		m.ID, tenant, generated, status, rating,
		documentsJSON, recordJSON, m.ArtifactURL, m.Failure, m.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *MemoRepository) Get(ctx context.Context, tenant string, id domain.MemoID) (*domain.Memo, error) {
	q := `
SELECT ` + memoColumns + `
FROM investment_memos
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanMemo(row)
}

// Latest memos per tenant
func (r *MemoRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Memo, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
SELECT ` + memoColumns + `
FROM investment_memos
WHERE tenant_id=$1
ORDER BY generated_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Paginate with offset + limit
func (r *MemoRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	q := `
SELECT ` + memoColumns + `
FROM investment_memos
WHERE tenant_id=$1
ORDER BY generated_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying memos: %w", err)
	}
	defer rows.Close()

	var memos []*domain.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		memos = append(memos, m)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM investment_memos WHERE tenant_id=$1;`, tenant,
	).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       memos,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateStatus hanya update kolom status + failure
func (r *MemoRepository) UpdateStatus(ctx context.Context, tenant string, id domain.MemoID, status domain.Status, failure string) error {
	const q = `
UPDATE investment_memos
SET status = $1, failure = $2
WHERE tenant_id = $3 AND id = $4;`
	_, err := r.db.ExecContext(ctx, q, status, failure, tenant, id)
	return err
}

// Summary rekap memo sejak N hari terakhir
func (r *MemoRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*)                                          AS total_memos,
       COUNT(rating)                                     AS rated,
       COALESCE(AVG(rating),0)                           AS avg_rating,
       COUNT(*) FILTER (WHERE rating >= 4)               AS strong_buys
FROM investment_memos
WHERE tenant_id=$1 AND generated_at >= $2;
`
	var s domain.Summary
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(
		&s.TotalMemos, &s.RatedMemos, &s.AverageRating, &s.StrongBuys,
	); err != nil {
		return domain.Summary{}, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemo(row rowScanner) (*domain.Memo, error) {
	var m domain.Memo
	var rating sql.NullInt64
	var documentsJSON, recordJSON []byte

	if err := row.Scan(
		&m.ID, &m.TenantID, &m.GeneratedAt, &m.Status, &rating,
		&documentsJSON, &recordJSON, &m.ArtifactURL, &m.Failure, &m.DurationMS,
	); err != nil {
		return nil, err
	}

	if rating.Valid {
		v := int(rating.Int64)
		m.Rating = &v
	}
	if err := json.Unmarshal(documentsJSON, &m.Documents); err != nil {
		m.Documents = nil
	}
	m.Record = analysis.NewRecord()
	_ = json.Unmarshal(recordJSON, &m.Record)

	return &m, nil
}
