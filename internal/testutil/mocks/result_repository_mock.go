package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/timestrainer/internal/models"
)

// MockResultRepository is a mock implementation of repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Insert(ctx context.Context, result models.GameResult) (int64, error) {
	args := m.Called(ctx, result)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResultRepository) GetBySession(ctx context.Context, sessionID string) (*models.GameResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameResult), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameResult), args.Error(1)
}

func (m *MockResultRepository) Count(ctx context.Context, filter models.ResultFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockResultRepository) Stats(ctx context.Context, playerID string) (*models.ResultStats, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResultStats), args.Error(1)
}

func (m *MockResultRepository) BestScores(ctx context.Context, playerID string) ([]models.BestScore, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BestScore), args.Error(1)
}
