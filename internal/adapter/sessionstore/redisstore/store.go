// Package redisstore keeps live screening sessions in Redis so that several
// server replicas can serve the same session. Replicas serialize events for
// a session through a per-session lock key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "screening:session:"

// LockPrefix namespaces session lock keys. It must not share DefaultPrefix so
// that List never sees lock keys.
const LockPrefix = "screening:lock:"

const (
	DefaultLockTTL  = 30 * time.Second
	DefaultLockWait = 5 * time.Second
)

var errLocked = errors.New("session locked")

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store implements domain.SessionStore and domain.SessionLocker on Redis.
// Sessions are stored as JSON and expire after TTL without writes; a TTL of
// zero keeps them forever.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration

	// LockTTL bounds how long a crashed holder can keep a session locked.
	// It must exceed the time needed to evaluate one answer.
	LockTTL time.Duration
	// LockWait is how long Lock retries before giving up with ErrConflict.
	LockWait time.Duration
}

// New returns a Store using the default key prefix.
func New(rdb redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: DefaultPrefix, ttl: ttl, LockTTL: DefaultLockTTL, LockWait: DefaultLockWait}
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) lockKey(id string) string { return LockPrefix + id }

// Lock takes the session's lock key with SET NX PX, retrying until LockWait
// elapses. The returned func releases the lock if it is still ours.
func (s *Store) Lock(ctx context.Context, id string) (func(), error) {
	ctx, span := otel.Tracer("sessionstore.redis").Start(ctx, "sessions.Lock")
	defer span.End()

	ttl, wait := s.LockTTL, s.LockWait
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	key := s.lockKey(id)
	token := uuid.NewString()
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = wait

	op := func() error {
		ok, err := s.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLocked
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, errLocked) {
			return nil, fmt.Errorf("op=session.lock: %w: session %s is busy", domain.ErrConflict, id)
		}
		return nil, fmt.Errorf("op=session.lock: %w", err)
	}

	return func() {
		// released even when the request context is already done
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, s.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			slog.Warn("release session lock failed", slog.String("session_id", id), slog.Any("error", err))
		}
	}, nil
}

// Get loads a session or returns domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (domain.ScreeningSession, error) {
	ctx, span := otel.Tracer("sessionstore.redis").Start(ctx, "sessions.Get")
	defer span.End()
	b, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScreeningSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.ScreeningSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	var sess domain.ScreeningSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return domain.ScreeningSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	return sess, nil
}

// Put writes the session and refreshes its TTL.
func (s *Store) Put(ctx context.Context, sess domain.ScreeningSession) error {
	ctx, span := otel.Tracer("sessionstore.redis").Start(ctx, "sessions.Put")
	defer span.End()
	if sess.ID == "" {
		return fmt.Errorf("op=session.put: %w: empty session id", domain.ErrInvalidArgument)
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("op=session.put: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(sess.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("op=session.put: %w", err)
	}
	return nil
}

// Delete removes the session. Missing sessions are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("sessionstore.redis").Start(ctx, "sessions.Delete")
	defer span.End()
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("op=session.delete: %w", err)
	}
	return nil
}

// List returns all stored sessions sorted by id. Keys that expire between
// SCAN and GET are skipped.
func (s *Store) List(ctx context.Context) ([]domain.ScreeningSession, error) {
	ctx, span := otel.Tracer("sessionstore.redis").Start(ctx, "sessions.List")
	defer span.End()
	out := []domain.ScreeningSession{}
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		b, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("op=session.list: %w", err)
		}
		var sess domain.ScreeningSession
		if err := json.Unmarshal(b, &sess); err != nil {
			return nil, fmt.Errorf("op=session.list: %w", err)
		}
		out = append(out, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("op=session.list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
