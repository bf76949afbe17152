package jobs

import "github.com/vytor/timestrainer/internal/models"

// JobQueue provides an abstraction for enqueueing background persistence
type JobQueue interface {
	EnqueueSaveResult(result models.GameResult) error
	EnqueueSavePreferences(playerID string, prefs models.Preferences) error
}
