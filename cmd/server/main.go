// Command server starts the talent screener HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpserver "github.com/fairyhunter13/ai-talent-screener/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/media"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-talent-screener/internal/app"
	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/evaluation"
	"github.com/fairyhunter13/ai-talent-screener/internal/screening"
	"github.com/fairyhunter13/ai-talent-screener/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, extraction, embedding and session instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infra: DB pool and schema
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
	questionRepo := postgres.NewQuestionRepo(pool)
	responseRepo := postgres.NewResponseRepo(pool)

	rdb, err := newRedis(cfg)
	if err != nil {
		slog.Error("redis connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	builder, err := newProfileBuilder(cfg)
	if err != nil {
		slog.Error("skill vocabulary load failed", slog.Any("error", err))
		os.Exit(1)
	}
	profiles := usecase.NewProfileService(newExtractor(cfg), builder)

	sessions := screening.NewManager(questionRepo, newSessionStore(cfg, rdb), evaluation.NewEvaluator(newSimilarity(cfg, rdb)))
	sessions.Recorder = responseRepo
	sessions.Media = media.NewPlaceholder()
	sessions.MediaTimeout = cfg.MediaAnalysisTimeout
	sessions.IdleTimeout = cfg.SessionIdleTimeout

	events := newEventPublisher(ctx, cfg)
	var kafkaProbe app.Pinger
	if events != nil {
		sessions.Events = events
		kafkaProbe = events
		defer func() {
			if err := events.Close(); err != nil {
				slog.Error("failed to close event publisher", slog.Any("error", err))
			}
		}()
	}

	go runReaper(ctx, sessions, cfg.SessionReapInterval)

	srv := httpserver.NewServer(cfg, profiles, usecase.NewQuestionService(questionRepo), usecase.NewResponseService(responseRepo), sessions)
	srv.DBCheck, srv.RedisCheck, srv.KafkaCheck, srv.TikaCheck = app.BuildReadinessChecks(cfg, pool, redisOrNil(rdb), kafkaProbe)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

// runReaper aborts idle sessions until ctx is done.
func runReaper(ctx context.Context, m *screening.Manager, every time.Duration) {
	if every <= 0 || m.IdleTimeout <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := m.Reap(ctx, now)
			if err != nil {
				slog.Warn("session reap failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				slog.Info("idle sessions aborted", slog.Int("count", n))
			}
		}
	}
}
