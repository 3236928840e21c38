package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

func TestResponseRepo_Record(t *testing.T) {
	pool := &poolMock{}
	repo := postgres.NewResponseRepo(pool)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := domain.ResponseRecord{
		SessionID:   "s1",
		CandidateID: "c1",
		JobID:       "j1",
		Response: domain.ScreeningResponse{
			QuestionID:   "q1",
			ResponseText: "I use Python daily",
			Score:        72.5,
			Sentiment:    "positive",
			Facial:       domain.NotCaptured(),
			Tone:         domain.MediaAnalysis{Status: domain.MediaPlaceholder, Metrics: map[string]float64{"confidence": 0.8}},
			AnsweredAt:   at,
		},
	}
	var captured []any
	pool.On("Exec", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(2).([]any)
	}).Return(pgconn.CommandTag{}, nil).Once()

	require.NoError(t, repo.Record(context.Background(), rec))
	require.Len(t, captured, 12)
	assert.Equal(t, "c1", captured[1])
	assert.Equal(t, 72.5, captured[5])
	assert.JSONEq(t, `{"status":"not_captured"}`, string(captured[9].([]byte)))
	assert.JSONEq(t, `{"status":"placeholder","metrics":{"confidence":0.8}}`, string(captured[10].([]byte)))
	assert.Equal(t, at, captured[11])

	pool.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, assert.AnError).Once()
	err := repo.Record(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=response.record")
}

func TestResponseRepo_ListByCandidate(t *testing.T) {
	pool := &poolMock{}
	repo := postgres.NewResponseRepo(pool)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tone, _ := json.Marshal(domain.MediaAnalysis{Status: domain.MediaUnavailable})
	rows := &rowsStub{data: [][]any{{
		"s1", "c1", "j1", "q1", "answer", 50.0, 0.25, "positive", "fb",
		[]byte(`{"status":"not_captured"}`), tone, at,
	}}}
	pool.On("Query", mock.Anything, mock.Anything, []any{"c1"}).Return(rows, nil).Once()

	got, err := repo.ListByCandidate(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, 50.0, got[0].Response.Score)
	assert.Equal(t, 0.25, got[0].Response.SentimentPolarity)
	assert.Equal(t, domain.MediaNotCaptured, got[0].Response.Facial.Status)
	assert.Equal(t, domain.MediaUnavailable, got[0].Response.Tone.Status)
	assert.Equal(t, at, got[0].Response.AnsweredAt)
}

func TestResponseRepo_ListByCandidate_BadJSON(t *testing.T) {
	pool := &poolMock{}
	rows := &rowsStub{data: [][]any{{
		"s1", "c1", "j1", "q1", "answer", 50.0, 0.0, "neutral", "fb",
		[]byte(`{`), []byte(`{}`), time.Now(),
	}}}
	pool.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil).Once()

	_, err := postgres.NewResponseRepo(pool).ListByCandidate(context.Background(), "c1")
	assert.Error(t, err)
}
