package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/export"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
)

type resultsResponse struct {
	Results []models.GameResult `json:"results"`
	Total   int                 `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

type statsResponse struct {
	Stats      *models.ResultStats `json:"stats"`
	BestScores []models.BestScore  `json:"best_scores"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	filter, err := parseResultFilter(r, playerFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	results, total, err := s.StatsService.ListResults(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if results == nil {
		results = []models.GameResult{}
	}

	writeJSON(w, r, http.StatusOK, resultsResponse{
		Results: results,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := s.StatsService.GetResult(r.Context(), sessionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	// other players' games are not visible
	if result.PlayerID != playerFromContext(r.Context()) {
		handleError(w, r, errors.NewNotFoundError("result", sessionID))
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleResultStats(w http.ResponseWriter, r *http.Request) {
	playerID := playerFromContext(r.Context())

	stats, err := s.StatsService.GetStats(r.Context(), playerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	best, err := s.StatsService.GetBestScores(r.Context(), playerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if best == nil {
		best = []models.BestScore{}
	}

	writeJSON(w, r, http.StatusOK, statsResponse{Stats: stats, BestScores: best})
}

func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	filter, err := parseResultFilter(r, playerFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.StatsService.ExportResults(r.Context(), filter, &buf); err != nil {
		handleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("results-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("failed to write export: %v", err)
	}
}
