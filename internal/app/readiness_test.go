package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/config"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestBuildReadinessChecks_Unwired(t *testing.T) {
	db, red, kafka, tika := BuildReadinessChecks(config.Config{TextExtractor: "native"}, nil, nil, nil)
	assert.Nil(t, db)
	assert.Nil(t, red)
	assert.Nil(t, kafka)
	assert.Nil(t, tika)
}

func TestBuildReadinessChecks_DBAndKafka(t *testing.T) {
	down := errors.New("down")
	db, _, kafka, _ := BuildReadinessChecks(config.Config{},
		pingerFunc(func(context.Context) error { return nil }),
		nil,
		pingerFunc(func(context.Context) error { return down }),
	)
	require.NotNil(t, db)
	require.NotNil(t, kafka)
	assert.NoError(t, db(context.Background()))
	assert.ErrorIs(t, kafka(context.Background()), down)
}

func TestBuildReadinessChecks_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, red, _, _ := BuildReadinessChecks(config.Config{}, nil, rdb, nil)
	require.NotNil(t, red)
	assert.NoError(t, red(context.Background()))

	mr.Close()
	assert.Error(t, red(context.Background()))
}

func TestBuildReadinessChecks_Tika(t *testing.T) {
	status := http.StatusOK
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/version", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer ts.Close()

	_, _, _, tika := BuildReadinessChecks(config.Config{TextExtractor: "tika", TikaURL: ts.URL + "/"}, nil, nil, nil)
	require.NotNil(t, tika)
	assert.NoError(t, tika(context.Background()))

	status = http.StatusBadGateway
	assert.EqualError(t, tika(context.Background()), "tika status 502")
}
