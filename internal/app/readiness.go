package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-talent-screener/internal/config"
)

// Pinger is the minimal interface for a dependency capable of Ping, such as
// a pgx pool or the session event publisher.
type Pinger interface{ Ping(ctx context.Context) error }

// Probe is a single readiness check. A nil Probe means the dependency is not
// wired and is skipped.
type Probe func(ctx context.Context) error

// BuildReadinessChecks returns the db, redis, kafka and tika probes. Probes
// for dependencies this deployment does not use are nil.
func BuildReadinessChecks(cfg config.Config, pool Pinger, rdb redis.UniversalClient, events Pinger) (db, red, kafka, tika Probe) {
	if pool != nil {
		db = pool.Ping
	}
	if rdb != nil {
		red = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if events != nil {
		kafka = events.Ping
	}
	if cfg.UseTika() {
		base := strings.TrimRight(cfg.TikaURL, "/")
		client := &http.Client{Timeout: 2 * time.Second}
		tika = func(ctx context.Context) error {
			if base == "" {
				return fmt.Errorf("tika url not configured")
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/version", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
	}
	return db, red, kafka, tika
}
