package jobs

import (
	"github.com/vytor/timestrainer/internal/events"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
	"github.com/vytor/timestrainer/internal/settings"
	"github.com/vytor/timestrainer/internal/worker"
)

// WorkerQueue implements JobQueue on a worker pool
type WorkerQueue struct {
	pool      *worker.Pool
	results   repository.ResultRepository
	store     *settings.Store
	publisher events.Publisher
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(
	pool *worker.Pool,
	results repository.ResultRepository,
	store *settings.Store,
	publisher events.Publisher,
) JobQueue {
	return &WorkerQueue{
		pool:      pool,
		results:   results,
		store:     store,
		publisher: publisher,
	}
}

func (q *WorkerQueue) EnqueueSaveResult(result models.GameResult) error {
	return q.pool.Submit(&worker.SaveResultJob{
		Results:   q.results,
		Publisher: q.publisher,
		Result:    result,
	})
}

func (q *WorkerQueue) EnqueueSavePreferences(playerID string, prefs models.Preferences) error {
	return q.pool.Submit(&worker.SavePreferencesJob{
		Store:       q.store,
		PlayerID:    playerID,
		Preferences: prefs,
	})
}
