package memo

import (
	"time"

	"github.com/teamkaeos/signal-analyst/internal/domain/analysis"
)

// ID tipe untuk Memo
type MemoID string

// Status enum
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Aggregate Root: Memo, one generated investment memo per data-room
// submission. Rating is nil when the analysis produced no valid 1-5 score;
// that is a distinct state from the record's "Not Available" sentinel.
type Memo struct {
	ID          MemoID          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Status      Status          `json:"status"`
	Documents   []string        `json:"documents,omitempty"`
	Record      analysis.Record `json:"record"`
	Rating      *int            `json:"rating,omitempty"`
	ArtifactURL string          `json:"artifact_url,omitempty"`
	Failure     string          `json:"failure,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
}

// CompanyName returns the display-ready company name for filenames and
// summaries, falling back to a generic label when extraction came up empty.
func (m *Memo) CompanyName() string {
	name := analysis.CleanText(m.Record.CompanyOverview.Name)
	if name == "" || name == analysis.Sentinel {
		return "Startup Analysis"
	}
	return name
}
