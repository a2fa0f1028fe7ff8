package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmemos "github.com/teamkaeos/signal-analyst/internal/application/memos"
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
	return domain.Summary{TotalMemos: 3, RatedMemos: 2, AverageRating: 4.5, StrongBuys: 2}, nil
}

func (r *fakeRepo) statuses() []domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Status
	for _, m := range r.memos {
		out = append(out, m.Status)
	}
	return out
}

type fakeAnalyzer struct{ response string }

func (a *fakeAnalyzer) Analyze(_ context.Context, _ string) (string, error) {
	return a.response, nil
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractText(_ string, data []byte) (string, error) {
	return string(data), nil
}

type fakeStore struct{}

func (fakeStore) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	return "http://store.local/" + key, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := &appmemos.Service{
		Repo:      repo,
		Analyzer:  &fakeAnalyzer{response: `{"company_overview": {"name": "Acme"}, "recommendation": {"rating": "4/5"}}`},
		Extractor: fakeExtractor{},
		Documents: fakeStore{},
		Clock:     appmemos.SystemClock{},
	}
	ts := httptest.NewServer(NewRouter(svc, Options{}))
	t.Cleanup(ts.Close)
	return ts, repo
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

const validMemoID = "0f2a9b6c-1d3e-4f5a-8b7c-9d0e1f2a3b4c-memo"

func seedMemo(repo *fakeRepo, tenant string) *domain.Memo {
	m := &domain.Memo{
		ID:          validMemoID,
		TenantID:    tenant,
		GeneratedAt: time.Now(),
		Status:      domain.StatusSuccess,
		Documents:   []string{"deck.pdf"},
		Record:      analysis.NewRecord(),
	}
	m.Record.CompanyOverview.Name = "Acme"
	_ = repo.Save(context.Background(), m)
	return m
}

func TestGenerateQueuesAndCompletes(t *testing.T) {
	ts, repo := newTestServer(t)

	body, contentType := multipartUpload(t, "documents", "deck.txt", "pitch deck contents")
	resp, err := http.Post(ts.URL+"/v1/fund-a/memos", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "queued", out["status"])
	assert.Equal(t, "fund-a", out["tenant"])

	// Pipeline runs in the background; wait for the memo to land.
	require.Eventually(t, func() bool {
		for _, st := range repo.statuses() {
			if st == domain.StatusSuccess {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGenerateRejectsUnsupportedExtension(t *testing.T) {
	ts, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "documents", "malware.exe", "xx")
	resp, err := http.Post(ts.URL+"/v1/fund-a/memos", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateRejectsEmptyUpload(t *testing.T) {
	ts, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	resp, err := http.Post(ts.URL+"/v1/fund-a/memos", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMemo(t *testing.T) {
	ts, repo := newTestServer(t)
	seedMemo(repo, "fund-a")

	resp, err := http.Get(ts.URL + "/v1/fund-a/memos/" + validMemoID)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out domain.Memo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, domain.MemoID(validMemoID), out.ID)
	assert.Equal(t, "Acme", out.Record.CompanyOverview.Name)
}

func TestGetMemoNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/fund-a/memos/" + validMemoID)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMemoInvalidID(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/fund-a/memos/not-a-memo-id")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMemoWrongTenant(t *testing.T) {
	ts, repo := newTestServer(t)
	seedMemo(repo, "fund-a")

	resp, err := http.Get(ts.URL + "/v1/fund-b/memos/" + validMemoID)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLatest(t *testing.T) {
	ts, repo := newTestServer(t)
	seedMemo(repo, "fund-a")

	resp, err := http.Get(ts.URL + "/v1/fund-a/memos/latest?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []*domain.Memo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, domain.MemoID(validMemoID), out[0].ID)
}

func TestExportDownload(t *testing.T) {
	ts, repo := newTestServer(t)
	seedMemo(repo, "fund-a")

	resp, err := http.Get(ts.URL + "/v1/fund-a/memos/" + validMemoID + "/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Acme_memo.json")

	var record analysis.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "Acme", record.CompanyOverview.Name)
}

func TestSummary(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/fund-a/summary?days=30")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out domain.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 3, out.TotalMemos)
	assert.InDelta(t, 4.5, out.AverageRating, 0.001)
}
