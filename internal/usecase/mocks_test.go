package usecase_test

import (
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

type questionRepoMock struct{ mock.Mock }

func (m *questionRepoMock) ListByJob(ctx domain.Context, jobID string) ([]domain.ScreeningQuestion, error) {
	a := m.Called(ctx, jobID)
	qs, _ := a.Get(0).([]domain.ScreeningQuestion)
	return qs, a.Error(1)
}

func (m *questionRepoMock) Get(ctx domain.Context, id string) (domain.ScreeningQuestion, error) {
	a := m.Called(ctx, id)
	return a.Get(0).(domain.ScreeningQuestion), a.Error(1)
}

func (m *questionRepoMock) Create(ctx domain.Context, q domain.ScreeningQuestion) (string, error) {
	a := m.Called(ctx, q)
	return a.String(0), a.Error(1)
}

func (m *questionRepoMock) Update(ctx domain.Context, q domain.ScreeningQuestion) error {
	return m.Called(ctx, q).Error(0)
}

func (m *questionRepoMock) Delete(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type responseRepoMock struct{ mock.Mock }

func (m *responseRepoMock) Record(ctx domain.Context, r domain.ResponseRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *responseRepoMock) ListByCandidate(ctx domain.Context, candidateID string) ([]domain.ResponseRecord, error) {
	a := m.Called(ctx, candidateID)
	rs, _ := a.Get(0).([]domain.ResponseRecord)
	return rs, a.Error(1)
}

type extractorStub struct {
	text string
	err  error
}

func (e extractorStub) Extract(_ domain.Context, _ []byte, _ domain.DocumentFormat) (string, error) {
	return e.text, e.err
}
