// Command seed loads screening questions from YAML files into Postgres.
//
// Usage: seed [file.yaml ...]. Without arguments the default question set is
// seeded.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/questionseed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	slog.SetDefault(observability.SetupLogger(cfg))

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("db migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
	repo := postgres.NewQuestionRepo(pool)

	files := os.Args[1:]
	if len(files) == 0 {
		files = []string{questionseed.DefaultPath}
	}
	for _, f := range files {
		res, err := questionseed.SeedFile(ctx, repo, f)
		if err != nil {
			slog.Error("seed failed", slog.String("file", f), slog.Any("error", err))
			pool.Close()
			os.Exit(1)
		}
		slog.Info("questions seeded", slog.String("file", f), slog.Int("created", res.Created), slog.Int("updated", res.Updated))
	}
}
