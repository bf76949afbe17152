package repository

import (
	"context"
	"errors"

	"github.com/vytor/timestrainer/internal/models"
)

// ErrNotFound is returned by backends when a key or row does not exist.
var ErrNotFound = errors.New("not found")

// ResultRepository handles completed game history
type ResultRepository interface {
	Insert(ctx context.Context, result models.GameResult) (int64, error)
	GetBySession(ctx context.Context, sessionID string) (*models.GameResult, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error)
	Count(ctx context.Context, filter models.ResultFilter) (int, error)
	Stats(ctx context.Context, playerID string) (*models.ResultStats, error)
	BestScores(ctx context.Context, playerID string) ([]models.BestScore, error)
}

// SettingsRepository is a string key-value store for remembered preferences
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
