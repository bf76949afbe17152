package api

import (
	"net/http"

	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/scoring"
)

type settingsResponse struct {
	Preferences  models.Preferences      `json:"preferences"`
	Defaults     models.GameSettings     `json:"defaults"`
	Modes        []models.Mode           `json:"modes"`
	Difficulties []models.DifficultyInfo `json:"difficulties"`
	Ranks        []scoring.Rank          `json:"ranks"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	playerID := playerFromContext(r.Context())
	prefs := s.GameService.Preferences(r.Context(), playerID)

	defaults := models.DefaultGameSettings()
	defaults.Mode = prefs.Mode
	defaults.Difficulty = prefs.Difficulty

	difficulties := make([]models.DifficultyInfo, 0, len(models.Difficulties()))
	for _, d := range models.Difficulties() {
		difficulties = append(difficulties, d.Info())
	}

	writeJSON(w, r, http.StatusOK, settingsResponse{
		Preferences:  prefs,
		Defaults:     defaults,
		Modes:        models.Modes(),
		Difficulties: difficulties,
		Ranks:        scoring.Ranks(),
	})
}
