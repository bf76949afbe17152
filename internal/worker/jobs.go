package worker

import (
	"context"
	"fmt"

	"github.com/vytor/timestrainer/internal/events"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
	"github.com/vytor/timestrainer/internal/settings"
)

// SaveResultJob stores a finished game and announces it.
type SaveResultJob struct {
	Results   repository.ResultRepository
	Publisher events.Publisher
	Result    models.GameResult
}

func (j *SaveResultJob) Name() string { return "save_result" }

func (j *SaveResultJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"player_id":  j.Result.PlayerID,
		"session_id": j.Result.SessionID,
	})

	id, err := j.Results.Insert(ctx, j.Result)
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	j.Result.ID = id
	log.Info("result stored: id=%d score=%d rank=%s", id, j.Result.Score, j.Result.Rank)

	if j.Publisher == nil {
		return nil
	}
	// the result is already stored; a broker outage must not fail the job
	if err := j.Publisher.Publish(ctx, events.GameCompleted, j.Result); err != nil {
		log.Warn("failed to publish %s: %v", events.GameCompleted, err)
	}
	return nil
}

// SavePreferencesJob remembers the mode and difficulty a game was started with.
type SavePreferencesJob struct {
	Store       *settings.Store
	PlayerID    string
	Preferences models.Preferences
}

func (j *SavePreferencesJob) Name() string { return "save_preferences" }

func (j *SavePreferencesJob) Run(ctx context.Context) error {
	j.Store.Save(ctx, j.PlayerID, j.Preferences)
	return nil
}
