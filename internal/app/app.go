// Package app wires configuration into the running components shared by
// the server and the CLIs.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"repo-rag/internal/config"
	"repo-rag/internal/database"
	"repo-rag/internal/docstore"
	"repo-rag/internal/gitrepo"
	"repo-rag/internal/ingest"
	"repo-rag/internal/llm"
	"repo-rag/internal/pipeline"
)

// App holds the assembled components. Close releases database and redis
// connections.
type App struct {
	Engine    *pipeline.Engine
	Settings  database.SettingsStore
	Documents *docstore.Store
	Acquirer  *gitrepo.Acquirer

	redis *redis.Client
}

// New builds an App from cfg. A Postgres settings store is used when
// DatabaseURL is set, and a Redis repository lock when RedisURL is set;
// otherwise both fall back to in-process implementations.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Documents: docstore.New(cfg.DocsFolder)}

	if cfg.DatabaseURL != "" {
		db, err := database.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Initialize(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.Settings = db
		slog.InfoContext(ctx, "database connected")
	} else {
		a.Settings = database.NewMemoryStore()
		slog.InfoContext(ctx, "no DATABASE_URL configured; settings are kept in memory")
	}

	a.Acquirer = gitrepo.NewAcquirer(cfg.GitReposFolder)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Acquirer.Locker = gitrepo.NewRedisLocker(a.redis, gitrepo.DefaultRedisLockTTL)
		slog.InfoContext(ctx, "redis connected; repository locks are shared")
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Engine = &pipeline.Engine{
		Acquirer: a.Acquirer,
		Ingestor: ingest.NewIngestor(ingest.Options{
			SkipBinary:  cfg.Ingest.SkipBinary,
			ExtractPDF:  cfg.Ingest.ExtractPDF,
			MaxFileSize: cfg.Ingest.MaxFileSize,
		}),
		Conversant:       llm.NewDriver(client),
		Settings:         a.Settings,
		DocsFolder:       cfg.DocsFolder,
		TopK:             cfg.TopK,
		ListingThreshold: cfg.ListingThreshold,
		GitTimeout:       cfg.GitTimeout,
	}

	slog.InfoContext(ctx, "pipeline ready",
		"provider", cfg.LLM.Provider,
		"model", client.Model(),
		"docs_folder", cfg.DocsFolder,
		"git_repos_folder", cfg.GitReposFolder)

	return a, nil
}

func (a *App) Close() {
	if a.Settings != nil {
		a.Settings.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
