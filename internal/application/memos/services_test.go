package memos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamkaeos/signal-analyst/internal/domain/analysis"
	domain "github.com/teamkaeos/signal-analyst/internal/domain/memo"
)

type fakeRepo struct {
	mu    sync.Mutex
	memos map[domain.MemoID]*domain.Memo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{memos: map[domain.MemoID]*domain.Memo{}}
}

func (r *fakeRepo) Save(_ context.Context, m *domain.Memo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.memos[m.ID] = &cp
	return nil
}

func (r *fakeRepo) Get(_ context.Context, tenant string, id domain.MemoID) (*domain.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memos[id]
	if !ok || m.TenantID != tenant {
		return nil, nil
	}
	return m, nil
}

func (r *fakeRepo) Latest(_ context.Context, tenant string, limit int) ([]*domain.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Memo
	for _, m := range r.memos {
		if m.TenantID == tenant {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) Paginate(_ context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	list, _ := r.Latest(context.Background(), tenant, 0)
	return domain.PaginatedResult{Data: list, Page: page, PageSize: pageSize, Total: int64(len(list))}, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, tenant string, id domain.MemoID, status domain.Status, failure string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.memos[id]; ok {
		m.Status = status
		m.Failure = failure
	}
	return nil
}

func (r *fakeRepo) Summary(_ context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return domain.Summary{}, nil
}

type fakeAnalyzer struct {
	response string
	err      error
	lastDocs string
}

func (a *fakeAnalyzer) Analyze(_ context.Context, documents string) (string, error) {
	a.lastDocs = documents
	return a.response, a.err
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractText(contentType string, data []byte) (string, error) {
	if contentType == "application/pdf" {
		return "", errors.New("corrupt pdf")
	}
	return string(data), nil
}

type fakeStore struct {
	mu   sync.Mutex
	keys []string
}

func (s *fakeStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "http://store.local/" + key, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(resp string, err error) (*Service, *fakeRepo, *fakeAnalyzer, *fakeStore) {
	repo := newFakeRepo()
	analyzer := &fakeAnalyzer{response: resp, err: err}
	store := &fakeStore{}
	svc := &Service{
		Repo:      repo,
		Analyzer:  analyzer,
		Extractor: fakeExtractor{},
		Documents: store,
		Clock:     fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo, analyzer, store
}

func TestGenerateSuccess(t *testing.T) {
	resp := `{"company_overview": {"name": "Acme"}, "recommendation": {"rating": "4/5", "rationale": "strong"}}`
	svc, repo, analyzer, store := newService(resp, nil)

	res, err := svc.Generate(context.Background(), GenerateMemoCommand{
		TenantID: "fund-a",
		Documents: []Document{
			{Name: "deck.txt", ContentType: "text/plain", Data: []byte("pitch deck contents")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusSuccess), res.Status)
	assert.Equal(t, "Acme", res.CompanyName)
	require.NotNil(t, res.Rating)
	assert.Equal(t, 4, *res.Rating)
	assert.NotEmpty(t, res.ArtifactURL)

	saved, err := repo.Get(context.Background(), "fund-a", domain.MemoID(res.ID))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, domain.StatusSuccess, saved.Status)
	assert.Equal(t, "Acme", saved.Record.CompanyOverview.Name)
	assert.Equal(t, analysis.Sentinel, saved.Record.Funding.FundingAsk)

	assert.Contains(t, analyzer.lastDocs, "deck.txt")
	assert.Contains(t, analyzer.lastDocs, "pitch deck contents")

	// Original archived + memo artifact exported.
	require.Len(t, store.keys, 2)
	assert.Contains(t, store.keys[0], "fund-a/documents/")
	assert.Contains(t, store.keys[1], "fund-a/memos/")
}

func TestGenerateGarbageResponseStillCompletes(t *testing.T) {
	svc, repo, _, _ := newService("model refused, plain prose only", nil)

	res, err := svc.Generate(context.Background(), GenerateMemoCommand{
		TenantID:  "fund-a",
		Documents: []Document{{Name: "notes.txt", ContentType: "text/plain", Data: []byte("x")}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusSuccess), res.Status)
	assert.Nil(t, res.Rating)

	saved, _ := repo.Get(context.Background(), "fund-a", domain.MemoID(res.ID))
	require.NotNil(t, saved)
	assert.Equal(t, analysis.NewRecord(), saved.Record, "unusable response degrades to full defaults")
}

func TestGenerateAnalyzerFailure(t *testing.T) {
	svc, repo, _, _ := newService("", fmt.Errorf("upstream 500"))

	res, err := svc.Generate(context.Background(), GenerateMemoCommand{
		TenantID:  "fund-a",
		Documents: []Document{{Name: "notes.txt", ContentType: "text/plain", Data: []byte("x")}},
	})
	require.Error(t, err)
	assert.Equal(t, string(domain.StatusFailed), res.Status)

	saved, _ := repo.Get(context.Background(), "fund-a", domain.MemoID(res.ID))
	require.NotNil(t, saved)
	assert.Equal(t, domain.StatusFailed, saved.Status)
	assert.Equal(t, "upstream 500", saved.Failure)
}

func TestGenerateSkipsUnreadableDocuments(t *testing.T) {
	resp := `{"company_overview": {"name": "Acme"}}`
	svc, _, analyzer, _ := newService(resp, nil)

	res, err := svc.Generate(context.Background(), GenerateMemoCommand{
		TenantID: "fund-a",
		Documents: []Document{
			{Name: "bad.pdf", ContentType: "application/pdf", Data: []byte{0x00}},
			{Name: "good.txt", ContentType: "text/plain", Data: []byte("usable")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusSuccess), res.Status)
	assert.NotContains(t, analyzer.lastDocs, "bad.pdf")
	assert.Contains(t, analyzer.lastDocs, "good.txt")
}

func TestGenerateAllDocumentsUnreadable(t *testing.T) {
	svc, repo, _, _ := newService("ignored", nil)

	res, err := svc.Generate(context.Background(), GenerateMemoCommand{
		TenantID:  "fund-a",
		Documents: []Document{{Name: "bad.pdf", ContentType: "application/pdf", Data: []byte{0x00}}},
	})
	require.Error(t, err)
	assert.Equal(t, string(domain.StatusFailed), res.Status)

	saved, _ := repo.Get(context.Background(), "fund-a", domain.MemoID(res.ID))
	require.NotNil(t, saved)
	assert.Equal(t, "no readable documents in upload", saved.Failure)
}

func TestExport(t *testing.T) {
	resp := `{"company_overview": {"name": "Acme Analytics"}}`
	svc, _, _, _ := newService(resp, nil)

	res, err := svc.Generate(context.Background(), GenerateMemoCommand{
		TenantID:  "fund-a",
		Documents: []Document{{Name: "deck.txt", ContentType: "text/plain", Data: []byte("x")}},
	})
	require.NoError(t, err)

	filename, payload, err := svc.Export(context.Background(), "fund-a", domain.MemoID(res.ID))
	require.NoError(t, err)
	assert.Equal(t, "Acme_Analytics_memo.json", filename)
	assert.Contains(t, string(payload), `"name": "Acme Analytics"`)
	assert.Contains(t, string(payload), `"company_overview"`)
}

func TestExportUnknownMemo(t *testing.T) {
	svc, _, _, _ := newService("", nil)

	_, _, err := svc.Export(context.Background(), "fund-a", "missing-memo")
	assert.Error(t, err)
}
