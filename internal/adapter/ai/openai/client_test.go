package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

type embedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

func testConfig(url string) config.Config {
	return config.Config{
		AppEnv:          "test",
		OpenAIAPIKey:    "k",
		OpenAIBaseURL:   url,
		EmbeddingsModel: "text-embedding-3-small",
	}
}

func TestEmbed_ConvertsFloats(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var er embedReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&er))
		assert.Equal(t, "text-embedding-3-small", er.Model)
		assert.Equal(t, []string{"a", "b"}, er.Input)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{0.4}},
				{"index": 0, "embedding": []float64{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer ts.Close()

	vecs, err := New(testConfig(ts.URL)).Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 3)
	assert.Len(t, vecs[1], 1)
}

func TestEmbed_Unconfigured(t *testing.T) {
	_, err := New(config.Config{AppEnv: "test"}).Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
}

func TestEmbed_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad model"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbed_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{1}}},
		})
	}))
	defer ts.Close()

	vecs, err := New(testConfig(ts.URL)).Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}}, vecs)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbed_CountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestEmbed_EmptyInput(t *testing.T) {
	vecs, err := New(testConfig("http://127.0.0.1:1")).Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
