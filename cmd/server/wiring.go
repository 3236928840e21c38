package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/ai-talent-screener/internal/adapter/ai"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/sessionstore/redisstore"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/textextractor/docparse"
	tikaext "github.com/fairyhunter13/ai-talent-screener/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/extraction"
	"github.com/fairyhunter13/ai-talent-screener/internal/nlp"
	"github.com/fairyhunter13/ai-talent-screener/internal/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/screening"
	"github.com/fairyhunter13/ai-talent-screener/internal/service/ratelimiter"
	"github.com/fairyhunter13/ai-talent-screener/internal/vocab"
)

// newRedis connects only when a component needs Redis.
func newRedis(cfg config.Config) (*redis.Client, error) {
	if !cfg.UseRedisSessions() && cfg.EmbedRatePerMin <= 0 {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("op=redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("op=redis.Ping: %w", err)
	}
	return rdb, nil
}

// redisOrNil keeps a nil *redis.Client from becoming a non-nil interface.
func redisOrNil(rdb *redis.Client) redis.UniversalClient {
	if rdb == nil {
		return nil
	}
	return rdb
}

func newExtractor(cfg config.Config) domain.TextExtractor {
	if cfg.UseTika() {
		slog.Info("text extraction via Apache Tika", slog.String("url", cfg.TikaURL))
		return tikaext.New(cfg)
	}
	return docparse.New()
}

func newProfileBuilder(cfg config.Config) (extraction.ProfileBuilder, error) {
	var (
		v   *vocab.Vocabulary
		err error
	)
	if cfg.SkillVocabularyPath != "" {
		v, err = vocab.Load(cfg.SkillVocabularyPath)
	} else {
		v, err = vocab.Default()
	}
	if err != nil {
		return extraction.ProfileBuilder{}, err
	}
	var ann domain.Annotator = nlp.NewRuleAnnotator(v.Brands)
	if cfg.NERBackend == "prose" {
		ann = nlp.Chain{nlp.NewProseAnnotator(), ann}
	}
	return extraction.NewProfileBuilder(ann, v, cfg.SummaryLength), nil
}

// newSimilarity returns nil when no embeddings endpoint is configured, which
// makes the evaluator score on keyword overlap alone.
func newSimilarity(cfg config.Config, rdb *redis.Client) domain.SimilarityScorer {
	if !cfg.EmbeddingsEnabled() {
		slog.Info("embeddings not configured; semantic similarity disabled")
		return nil
	}
	var embedder domain.Embedder = openai.New(cfg)
	if rdb != nil && cfg.EmbedRatePerMin > 0 {
		limiter := ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
			ai.RateLimitKey: ratelimiter.NewBucketConfigFromPerMinute(cfg.EmbedRatePerMin),
		})
		embedder = ai.NewRateLimitedEmbedder(embedder, limiter)
	}
	embedder = ai.NewEmbedCache(embedder, cfg.EmbedCacheSize)
	return ai.NewScorer(embedder, observability.NewBreaker("embeddings", 5, 30*time.Second))
}

func newSessionStore(cfg config.Config, rdb *redis.Client) domain.SessionStore {
	if cfg.UseRedisSessions() && rdb != nil {
		return redisstore.New(rdb, cfg.SessionIdleTimeout)
	}
	return screening.NewMemoryStore()
}

// newEventPublisher returns nil when publishing is disabled or the brokers
// are unreachable; sessions run without lifecycle events in that case.
func newEventPublisher(ctx context.Context, cfg config.Config) *redpanda.Publisher {
	if cfg.SessionEventsTopic == "" || len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	p, err := redpanda.NewPublisher(ctx, cfg.KafkaBrokers, cfg.SessionEventsTopic)
	if err != nil {
		slog.Warn("session event publisher disabled", slog.Any("error", err))
		return nil
	}
	return p
}
