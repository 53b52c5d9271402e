package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"genquiz-service/internal/app"
	"genquiz-service/internal/config"
	"genquiz-service/internal/infra/memory"
	pgstore "genquiz-service/internal/infra/postgres"
	redisstore "genquiz-service/internal/infra/redis"
	"genquiz-service/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

// openStore connects the configured snapshot backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (app.SnapshotStore, func(), error) {
	key := cfg.Storage.Key
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewSnapshotStore(), func() {}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.Storage.Path, err)
		}
		return sqlite.NewSnapshotStore(db, key), func() { _ = db.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		return redisstore.NewSnapshotStore(client, key), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstore.NewSnapshotStore(pool, key), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openLibrary loads the session list from the configured backend.
func openLibrary(ctx context.Context, cfg config.Config) (*app.Library, func(), error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	library := app.NewLibrary(store)
	if err := library.Load(ctx); err != nil {
		closeStore()
		return nil, nil, err
	}
	return library, closeStore, nil
}

func newGenaiClient(ctx context.Context, cfg config.Config) (*genai.Client, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured, set GEMINI_API_KEY")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.Gemini.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Duration(cfg.Gemini.Timeout, 60*time.Second)},
	})
}

// newWorkspace wires the generators and play settings from cfg.
func newWorkspace(ctx context.Context, cfg config.Config, library *app.Library, models app.ContentModel) *app.Workspace {
	opts := []app.WorkspaceOption{
		app.WithImages(app.NewImageGenerator(models, cfg.Gemini.ImageModel)),
		app.WithHost("host-1", cfg.Play.HostName),
	}
	if cfg.Play.Scoring == config.ScoringCorrectCount {
		opts = append(opts, app.WithScorer(app.CorrectAnswerScorer{}))
	}
	return app.NewWorkspace(ctx, library, app.NewQuestionGenerator(models, cfg.Gemini.QuestionModel), opts...)
}
