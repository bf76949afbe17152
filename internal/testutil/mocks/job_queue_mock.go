package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/timestrainer/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueSaveResult(result models.GameResult) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueSavePreferences(playerID string, prefs models.Preferences) error {
	args := m.Called(playerID, prefs)
	return args.Error(0)
}
