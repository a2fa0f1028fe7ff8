package memo

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, m *Memo) error
	Get(ctx context.Context, tenant string, id MemoID) (*Memo, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Memo, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) (PaginatedResult, error)
	UpdateStatus(ctx context.Context, tenant string, id MemoID, status Status, failure string) error
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
}

// DocumentStore port (interface untuk penyimpanan dokumen dan artefak memo)
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Extractor port (interface untuk ekstraksi teks dari dokumen upload)
type Extractor interface {
	ExtractText(contentType string, data []byte) (string, error)
}

// Summary rekap memo untuk satu tenant
type Summary struct {
	TotalMemos    int     `json:"total_memos"`
	RatedMemos    int     `json:"rated_memos"`
	AverageRating float64 `json:"average_rating"`
	StrongBuys    int     `json:"strong_buys"`
}
