package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ecovolt/backend/internal/config"
	"github.com/ecovolt/backend/internal/kv"
	"github.com/ecovolt/backend/internal/logging"
	"github.com/ecovolt/backend/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   create the submissions table and, with RATE_LIMIT_STORE=sqlite,
              the rate counter table
  status      report the number of stored submissions (read-only)`)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "":
		runSchema(ctx, cfg)
	case "status":
		runStatus(ctx, cfg)
	default:
		usage()
	}
}

func openRepo(ctx context.Context, cfg config.Config) (repository.SubmissionRepository, func()) {
	repo, closeRepo, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	return repo, closeRepo
}

func runSchema(ctx context.Context, cfg config.Config) {
	repo, closeRepo := openRepo(ctx, cfg)
	defer closeRepo()

	if repo == nil {
		slog.Info("DATABASE_URL disabled, skipping submissions table")
	} else {
		if err := repo.EnsureSchema(ctx); err != nil {
			logging.Fatal("create submissions table failed", "error", err)
		}
		slog.Info("submissions table ready")
	}

	if cfg.RateLimitStore != config.RateLimitSQLite {
		return
	}
	db, err := repository.OpenSQLite(cfg.RateLimitSQLitePath)
	if err != nil {
		logging.Fatal("open rate limit store failed", "path", cfg.RateLimitSQLitePath, "error", err)
	}
	defer db.Close()
	if err := kv.NewSQLStore(db, time.Now).EnsureSchema(ctx); err != nil {
		logging.Fatal("create rate counter table failed", "error", err)
	}
	slog.Info("rate counter table ready", "path", cfg.RateLimitSQLitePath)
}

func runStatus(ctx context.Context, cfg config.Config) {
	repo, closeRepo := openRepo(ctx, cfg)
	defer closeRepo()

	if repo == nil {
		slog.Info("DATABASE_URL disabled")
		return
	}
	exists, n, err := submissionStatus(ctx, repo)
	if err != nil {
		logging.Fatal("status failed", "error", err)
	}
	if !exists {
		slog.Warn("submissions table missing, run migrate without arguments to create it")
		return
	}
	slog.Info("submissions stored", "count", n)
}

// submissionStatus reads the table state without changing the schema.
func submissionStatus(ctx context.Context, repo repository.SubmissionRepository) (exists bool, count int, err error) {
	exists, err = repo.SchemaExists(ctx)
	if err != nil || !exists {
		return exists, 0, err
	}
	count, err = repo.Count(ctx)
	return exists, count, err
}
