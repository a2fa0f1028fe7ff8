package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/teamkaeos/signal-analyst/internal/application"
	"github.com/teamkaeos/signal-analyst/internal/application/memos"
	"github.com/teamkaeos/signal-analyst/internal/config"
	domai "github.com/teamkaeos/signal-analyst/internal/domain/ai"
	domain "github.com/teamkaeos/signal-analyst/internal/domain/memo"
	geminiclient "github.com/teamkaeos/signal-analyst/internal/infra/ai/gemini"
	openaiclient "github.com/teamkaeos/signal-analyst/internal/infra/ai/openai"
	mysqlp "github.com/teamkaeos/signal-analyst/internal/infra/db/mysql"
	postgresp "github.com/teamkaeos/signal-analyst/internal/infra/db/postgres"
	"github.com/teamkaeos/signal-analyst/internal/infra/docs"
	"github.com/teamkaeos/signal-analyst/internal/infra/httpserver"
	minioStore "github.com/teamkaeos/signal-analyst/internal/infra/storage"
	"github.com/teamkaeos/signal-analyst/internal/middleware"
)

func main() {
	// .env is optional, secrets can come from the real environment
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql default, postgres opt-in)
	var db *sql.DB
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewMemoRepository(db)
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewMemoRepository(db)
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init AI analyst
	var analyzer domai.Client
	switch cfg.AI.Provider {
	case "gemini":
		analyzer, err = geminiclient.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("gemini init error: %v", err)
		}
	case "openai":
		analyzer = openaiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	default:
		log.Fatalf("unknown ai provider: %s", cfg.AI.Provider)
	}

	// init service
	svc := &memos.Service{
		Repo:      repo,
		Analyzer:  analyzer,
		Extractor: docs.NewExtractor(),
		Documents: store,
		Clock:     application.SystemClock{},
	}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		APIKeys:        cfg.Auth.APIKeys,
		RateCapacity:   cfg.RateLimit.Capacity,
		RateRefill:     cfg.RateLimit.RefillRate,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthChecks: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
			"storage":  store,
		},
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
