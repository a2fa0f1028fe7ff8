package mysql

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

type MemoRepository struct {
	db *sql.DB
}

func NewMemoRepository(db *sql.DB) *MemoRepository {
	return &MemoRepository{db: db}
}

const memoColumns = `id, tenant_id, generated_at, status, rating, documents_json, record_json, artifact_url, failure, duration_ms`

// Save insert/update Memo record. The analysis record is stored as a JSON
// column; the rating is denormalized so summaries can aggregate in SQL.
func (r *MemoRepository) Save(ctx context.Context, m *domain.Memo) error {
	const q = `
INSERT INTO investment_memos
(id, tenant_id, generated_at, status, rating, documents_json, record_json, artifact_url, failure, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), rating=VALUES(rating),
 documents_json=VALUES(documents_json), record_json=VALUES(record_json),
 artifact_url=VALUES(artifact_url), failure=VALUES(failure), duration_ms=VALUES(duration_ms);
`
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
WHERE tenant_id=? AND id=? LIMIT 1;
`
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
WHERE tenant_id=? ORDER BY generated_at DESC, id DESC LIMIT ?;
`
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

// Paginate with offset + limit (classic pagination)
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
WHERE tenant_id=?
ORDER BY generated_at DESC, id DESC
LIMIT ? OFFSET ?;
`
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
		`SELECT COUNT(*) FROM investment_memos WHERE tenant_id=?;`, tenant,
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
SET status = ?, failure = ?
WHERE tenant_id = ? AND id = ?;`
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
SELECT COUNT(*) AS total_memos,
       COALESCE(SUM(rating IS NOT NULL),0) AS rated,
       COALESCE(AVG(rating),0)             AS avg_rating,
       COALESCE(SUM(rating >= 4),0)        AS strong_buys
FROM investment_memos
WHERE tenant_id=? AND generated_at >= ?;
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
	// A corrupt record column degrades to defaults rather than failing the read.
	m.Record = analysis.NewRecord()
	_ = json.Unmarshal(recordJSON, &m.Record)

	return &m, nil
}
