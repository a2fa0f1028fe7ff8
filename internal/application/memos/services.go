package memos

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teamkaeos/signal-analyst/internal/domain/ai"
	"github.com/teamkaeos/signal-analyst/internal/domain/analysis"
	domain "github.com/teamkaeos/signal-analyst/internal/domain/memo"
)

// Service implements use-cases untuk Memo generation.
// Service is designed to be used concurrently and is thread-safe: every
// call operates only on its own input and a freshly allocated record.
type Service struct {
	Repo      domain.Repository
	Analyzer  ai.Client
	Extractor domain.Extractor
	Documents domain.DocumentStore
	Clock     Clock
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

//
// ==== USE CASES ====
//

// Document is one uploaded data-room file.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Command untuk generate memo
type GenerateMemoCommand struct {
	TenantID  string
	Documents []Document
}

type GenerateMemoResult struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CompanyName string `json:"company_name"`
	Rating      *int   `json:"rating,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// GenerateUntilDone → jalanin pipeline dengan context.Background()
// cocok dipanggil dari goroutine di router supaya gak kena context canceled
func (s *Service) GenerateUntilDone(cmd GenerateMemoCommand) (GenerateMemoResult, error) {
	return s.Generate(context.Background(), cmd)
}

// UpdateStatus → update status memo di repo ("queued", "running", "failed")
func (s *Service) UpdateStatus(tenant string, id domain.MemoID, status domain.Status, failure string) error {
	return s.Repo.UpdateStatus(context.Background(), tenant, id, status, failure)
}

// Generate runs the full pipeline: extract document text → archive the
// originals → ask the AI analyst → normalize the reply → export the memo
// artifact → persist. The normalizer never fails, so after a successful AI
// call the memo always completes, even if every field is defaulted.
func (s *Service) Generate(ctx context.Context, cmd GenerateMemoCommand) (GenerateMemoResult, error) {
	now := s.Clock.Now()
	id := domain.MemoID(fmt.Sprintf("%s-memo", uuid.New().String()))

	names := make([]string, 0, len(cmd.Documents))
	for _, doc := range cmd.Documents {
		names = append(names, doc.Name)
	}

	// Create an initial memo row so we always have an ID to reference
	initial := &domain.Memo{
		ID:          id,
		TenantID:    cmd.TenantID,
		GeneratedAt: now,
		Status:      domain.StatusRunning,
		Documents:   names,
		Record:      analysis.NewRecord(),
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return GenerateMemoResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	combined, readable := s.collectText(ctx, cmd.TenantID, id, cmd.Documents)
	if readable == 0 {
		msg := "no readable documents in upload"
		_ = s.UpdateStatus(cmd.TenantID, id, domain.StatusFailed, msg)
		return GenerateMemoResult{ID: string(id), Status: string(domain.StatusFailed)}, fmt.Errorf("%s", msg)
	}

	raw, err := s.Analyzer.Analyze(ctx, combined)
	if err != nil {
		_ = s.UpdateStatus(cmd.TenantID, id, domain.StatusFailed, err.Error())
		return GenerateMemoResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	rec := analysis.Normalize(raw)

	var rating *int
	if score, ok := rec.SignalScore(); ok {
		rating = &score
	}

	final := &domain.Memo{
		ID:          id,
		TenantID:    cmd.TenantID,
		GeneratedAt: now,
		Status:      domain.StatusSuccess,
		Documents:   names,
		Record:      rec,
		Rating:      rating,
		DurationMS:  time.Since(now).Milliseconds(),
	}
	final.ArtifactURL = s.exportArtifact(ctx, final)

	if err := s.Repo.Save(ctx, final); err != nil {
		return GenerateMemoResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	return GenerateMemoResult{
		ID:          string(id),
		Status:      string(final.Status),
		CompanyName: final.CompanyName(),
		Rating:      final.Rating,
		ArtifactURL: final.ArtifactURL,
		DurationMS:  final.DurationMS,
	}, nil
}

// collectText extracts plain text from every document and archives the
// originals. Unreadable documents are skipped, not fatal; the AI gets
// whatever survived.
func (s *Service) collectText(ctx context.Context, tenant string, id domain.MemoID, docs []Document) (string, int) {
	var b strings.Builder
	readable := 0
	for _, doc := range docs {
		text, err := s.Extractor.ExtractText(doc.ContentType, doc.Data)
		if err != nil {
			log.Printf("memo %s: skipping %s: %v", id, doc.Name, err)
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", doc.Name, text)
		readable++

		if s.Documents != nil {
			key := fmt.Sprintf("%s/documents/%s/%s", tenant, id, doc.Name)
			if _, err := s.Documents.Put(ctx, key, doc.ContentType, doc.Data); err != nil {
				log.Printf("memo %s: archiving %s failed: %v", id, doc.Name, err)
			}
		}
	}
	return b.String(), readable
}

// exportArtifact uploads the serialized record so the memo can be
// downloaded later. Upload failure only costs the artifact URL.
func (s *Service) exportArtifact(ctx context.Context, m *domain.Memo) string {
	if s.Documents == nil {
		return ""
	}
	payload, err := json.MarshalIndent(m.Record, "", "  ")
	if err != nil {
		return ""
	}
	key := fmt.Sprintf("%s/memos/%s.json", m.TenantID, m.ID)
	url, err := s.Documents.Put(ctx, key, "application/json", payload)
	if err != nil {
		log.Printf("memo %s: artifact upload failed: %v", m.ID, err)
		return ""
	}
	return url
}

// Export serializes one memo's record for download. The payload is a
// direct one-to-one serialization of the stored record.
func (s *Service) Export(ctx context.Context, tenant string, id domain.MemoID) (string, []byte, error) {
	m, err := s.Repo.Get(ctx, tenant, id)
	if err != nil {
		return "", nil, err
	}
	if m == nil {
		return "", nil, fmt.Errorf("memo not found: %s", id)
	}
	payload, err := json.MarshalIndent(m.Record, "", "  ")
	if err != nil {
		return "", nil, err
	}
	filename := fmt.Sprintf("%s_memo.json", strings.ReplaceAll(m.CompanyName(), " ", "_"))
	return filename, payload, nil
}

// Latest ambil N memo terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Memo, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 memo by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.MemoID) (*domain.Memo, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Paginate halaman memo per tenant
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// Summary rekap memo N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}
