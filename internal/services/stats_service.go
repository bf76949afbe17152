package services

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/export"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
)

// maxExportRows bounds a single spreadsheet export.
const maxExportRows = 500

// StatsService handles result history and statistics
type StatsService interface {
	ListResults(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, int, error)
	GetResult(ctx context.Context, sessionID string) (*models.GameResult, error)
	GetStats(ctx context.Context, playerID string) (*models.ResultStats, error)
	GetBestScores(ctx context.Context, playerID string) ([]models.BestScore, error)
	ExportResults(ctx context.Context, filter models.ResultFilter, w io.Writer) error
}

type statsService struct {
	resultRepo repository.ResultRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(resultRepo repository.ResultRepository) StatsService {
	return &statsService{resultRepo: resultRepo}
}

func (s *statsService) ListResults(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing results: player_id=%s, limit=%d, offset=%d", filter.PlayerID, filter.Limit, filter.Offset)

	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, 0, errors.NewBadRequestError("limit and offset must not be negative")
	}

	results, err := s.resultRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.resultRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count results: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return results, total, nil
}

func (s *statsService) GetResult(ctx context.Context, sessionID string) (*models.GameResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting result: session_id=%s", sessionID)

	result, err := s.resultRepo.GetBySession(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("result", sessionID)
		}
		log.Error("failed to get result: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return result, nil
}

func (s *statsService) GetStats(ctx context.Context, playerID string) (*models.ResultStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting result stats: player_id=%s", playerID)

	stats, err := s.resultRepo.Stats(ctx, playerID)
	if err != nil {
		log.Error("failed to get result stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *statsService) GetBestScores(ctx context.Context, playerID string) ([]models.BestScore, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting best scores: player_id=%s", playerID)

	best, err := s.resultRepo.BestScores(ctx, playerID)
	if err != nil {
		log.Error("failed to get best scores: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return best, nil
}

func (s *statsService) ExportResults(ctx context.Context, filter models.ResultFilter, w io.Writer) error {
	log := logger.FromContext(ctx)

	filter.Offset = 0
	if filter.Limit <= 0 || filter.Limit > maxExportRows {
		filter.Limit = maxExportRows
	}

	results, err := s.resultRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to load results for export: %v", err)
		return errors.NewInternalError(err)
	}

	if err := export.WriteResults(w, results); err != nil {
		log.Error("failed to write results workbook: %v", err)
		return errors.NewInternalError(err)
	}

	log.Info("exported %d results for player %s", len(results), filter.PlayerID)
	return nil
}
