// Package settings remembers the player's last answer mode and difficulty.
package settings

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
)

// KeyPrefix namespaces stored preferences; the player id is appended.
const KeyPrefix = "multiplication-trainer-settings"

// record is the stored JSON shape. Fields stay strings so an unknown value can
// be detected instead of failing the whole decode.
type record struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

// Store loads and saves preferences. None of its methods fail: storage
// problems are logged and the defaults are used instead.
type Store struct {
	repo repository.SettingsRepository
}

func NewStore(repo repository.SettingsRepository) *Store {
	return &Store{repo: repo}
}

// Key returns the storage key for playerID.
func Key(playerID string) string {
	if playerID == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + playerID
}

// Load returns the stored preferences, or the defaults when nothing valid is
// stored.
func (s *Store) Load(ctx context.Context, playerID string) models.Preferences {
	log := logger.FromContext(ctx).WithPrefix("settings")

	raw, err := s.repo.Get(ctx, Key(playerID))
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			log.Warn("failed to load game settings: %v", err)
		}
		return models.DefaultPreferences()
	}
	if raw == "" {
		return models.DefaultPreferences()
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		log.Warn("failed to load game settings: %v", err)
		return models.DefaultPreferences()
	}

	mode, modeErr := models.ParseMode(rec.Mode)
	difficulty, difficultyErr := models.ParseDifficulty(rec.Difficulty)
	if modeErr != nil || difficultyErr != nil {
		log.Warn("stored settings invalid, using defaults: mode=%q difficulty=%q", rec.Mode, rec.Difficulty)
		return models.DefaultPreferences()
	}
	return models.Preferences{Mode: mode, Difficulty: difficulty}
}

// Save overwrites the stored preferences.
func (s *Store) Save(ctx context.Context, playerID string, prefs models.Preferences) {
	log := logger.FromContext(ctx).WithPrefix("settings")

	data, err := json.Marshal(record{Mode: prefs.Mode.String(), Difficulty: prefs.Difficulty.String()})
	if err != nil {
		log.Warn("failed to save game settings: %v", err)
		return
	}
	if err := s.repo.Set(ctx, Key(playerID), string(data)); err != nil {
		log.Warn("failed to save game settings: %v", err)
		return
	}
	log.Debug("game settings saved: mode=%s difficulty=%s", prefs.Mode, prefs.Difficulty)
}

// Clear forgets the stored preferences.
func (s *Store) Clear(ctx context.Context, playerID string) {
	if err := s.repo.Delete(ctx, Key(playerID)); err != nil {
		logger.FromContext(ctx).WithPrefix("settings").Warn("failed to clear game settings: %v", err)
	}
}
