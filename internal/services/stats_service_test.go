package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
	"github.com/vytor/timestrainer/internal/testutil/mocks"
)

func TestStatsService_ListResults(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	filter := models.ResultFilter{PlayerID: "p1", Limit: 10}
	rows := []models.GameResult{{SessionID: "a", Score: 900}, {SessionID: "b", Score: 1000}}
	repo.On("List", mock.Anything, filter).Return(rows, nil)
	repo.On("Count", mock.Anything, filter).Return(12, nil)

	got, total, err := NewStatsService(repo).ListResults(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.Equal(t, 12, total)
}

func TestStatsService_ListResultsRejectsNegativePaging(t *testing.T) {
	repo := new(mocks.MockResultRepository)

	_, _, err := NewStatsService(repo).ListResults(context.Background(), models.ResultFilter{Offset: -1})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBadRequest))
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestStatsService_GetResult(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	repo.On("GetBySession", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	repo.On("GetBySession", mock.Anything, "broken").Return(nil, errors.New("disk"))
	repo.On("GetBySession", mock.Anything, "ok").Return(&models.GameResult{SessionID: "ok"}, nil)
	svc := NewStatsService(repo)
	ctx := context.Background()

	_, err := svc.GetResult(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = svc.GetResult(ctx, "broken")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))

	got, err := svc.GetResult(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.SessionID)
}

func TestStatsService_StatsErrorsAreInternal(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	repo.On("Stats", mock.Anything, "p1").Return(nil, errors.New("locked"))
	repo.On("BestScores", mock.Anything, "p1").Return(nil, errors.New("locked"))
	svc := NewStatsService(repo)

	_, err := svc.GetStats(context.Background(), "p1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))

	_, err = svc.GetBestScores(context.Background(), "p1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestStatsService_ExportResults(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	repo.On("List", mock.Anything, models.ResultFilter{PlayerID: "p1", Limit: maxExportRows}).Return([]models.GameResult{{
		SessionID:   "a",
		Mode:        models.ModeInput,
		Difficulty:  models.DifficultyMedium,
		Score:       1234,
		Rank:        "Excellent",
		CompletedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}}, nil)
	var buf bytes.Buffer

	err := NewStatsService(repo).ExportResults(context.Background(), models.ResultFilter{PlayerID: "p1", Offset: 40}, &buf)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip archive")
	repo.AssertExpectations(t)
}
