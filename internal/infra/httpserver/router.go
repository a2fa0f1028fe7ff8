package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appmemos "github.com/teamkaeos/signal-analyst/internal/application/memos"
	domai "github.com/teamkaeos/signal-analyst/internal/domain/ai"
	domain "github.com/teamkaeos/signal-analyst/internal/domain/memo"
	"github.com/teamkaeos/signal-analyst/internal/middleware"
)

// maxUploadBytes caps the multipart form parse. Data rooms are mostly
// pitch decks and spreadsheets, 64MB is generous.
const maxUploadBytes = 64 << 20

type Router struct {
	memosSvc *appmemos.Service
}

// Options carries the cross-cutting wiring the router mounts around
// its handlers.
type Options struct {
	APIKeys        map[string]string
	RateCapacity   int
	RateRefill     int
	HealthChecks   map[string]middleware.HealthChecker
	AllowedOrigins []string
}

func NewRouter(memosSvc *appmemos.Service, opts Options) http.Handler {
	r := &Router{memosSvc: memosSvc}
	mux := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(opts.APIKeys))
		mux.Use(middleware.RequireValidTenant)
	}
	if opts.RateCapacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(opts.RateCapacity, opts.RateRefill))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthChecks))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/memos", r.wrap(r.handleGenerate))
		rt.Get("/memos/latest", r.wrap(r.handleLatest))
		rt.Get("/memos", r.wrap(r.handleList))
		rt.Get("/memos/{id}", r.wrap(r.handleGet))
		rt.Get("/memos/{id}/export", r.wrap(r.handleExport))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequestError
			if errors.As(err, &br) {
				http.Error(w, br.msg, http.StatusBadRequest)
				return
			}
			if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "memo not found") {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/memos
// Multipart upload of data-room documents. The memo is generated in the
// background; the response only confirms the queue.
func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest("%v", err)
	}

	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest("parsing upload: %v", err)
	}

	var docs []appmemos.Document
	for _, headers := range req.MultipartForm.File {
		for _, hdr := range headers {
			name := middleware.SanitizeString(hdr.Filename)
			if err := middleware.ValidateFileName(name); err != nil {
				return badRequest("%v", err)
			}
			data, err := readUpload(hdr)
			if err != nil {
				return badRequest("reading %s: %v", name, err)
			}
			docs = append(docs, appmemos.Document{
				Name:        name,
				ContentType: contentTypeFor(name, hdr.Header.Get("Content-Type")),
				Data:        data,
			})
		}
	}
	if len(docs) == 0 {
		return badRequest("no documents in upload")
	}

	cmd := appmemos.GenerateMemoCommand{TenantID: tenant, Documents: docs}

	// 🚀 Jalankan di background, biar jalan sampai selesai
	go func() {
		middleware.IncrementMemos()
		middleware.IncrementMemosRunning()
		defer middleware.DecrementMemosRunning()

		result, err := r.memosSvc.GenerateUntilDone(cmd)
		if err != nil {
			log.Printf("background memo error for tenant=%s id=%s: %v", tenant, result.ID, err)
			middleware.IncrementMemosFailed()
			return
		}
		log.Printf("memo finished: tenant=%s id=%s company=%s artifact=%s",
			tenant, result.ID, result.CompanyName, result.ArtifactURL)
	}()

	// 🔙 langsung balikin respons ke client
	resp := map[string]any{
		"status":    "queued",
		"tenant":    tenant,
		"documents": len(docs),
		"message":   "memo generation started in background",
		"queuedAt":  r.memosSvc.Clock.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/memos/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.memosSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/memos?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.memosSvc.Paginate(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/memos/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateMemoID(id); err != nil {
		return badRequest("%v", err)
	}

	memo, err := r.memosSvc.Get(req.Context(), tenant, domain.MemoID(id))
	if err != nil {
		return err
	}
	if memo == nil {
		return sql.ErrNoRows
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(memo)
}

// GET /v1/{tenant}/memos/{id}/export
// Streams the memo record as a downloadable JSON file.
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateMemoID(id); err != nil {
		return badRequest("%v", err)
	}

	filename, payload, err := r.memosSvc.Export(req.Context(), tenant, domain.MemoID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, err = w.Write(payload)
	return err
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	summary, err := r.memosSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

func readUpload(hdr *multipart.FileHeader) ([]byte, error) {
	f, err := hdr.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// contentTypeFor trusts the client header when present; browsers often
// send octet-stream so the extension is the fallback.
func contentTypeFor(name, header string) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".csv":
		return "text/csv"
	case ".md":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
