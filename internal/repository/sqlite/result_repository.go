package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
)

var resultColumns = []string{
	"id", "player_id", "session_id", "mode", "difficulty", "correct_answers",
	"total_problems", "accuracy", "time_elapsed", "score", "rank", "completed_at",
}

type resultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository implementation
func NewResultRepository(db *sql.DB) repository.ResultRepository {
	return &resultRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (models.GameResult, error) {
	var (
		r                models.GameResult
		mode, difficulty string
	)
	err := row.Scan(&r.ID, &r.PlayerID, &r.SessionID, &mode, &difficulty, &r.CorrectAnswers,
		&r.TotalProblems, &r.Accuracy, &r.TimeElapsed, &r.Score, &r.Rank, &r.CompletedAt)
	if err != nil {
		return r, err
	}
	if r.Mode, err = models.ParseMode(mode); err != nil {
		return r, fmt.Errorf("result %d: %w", r.ID, err)
	}
	if r.Difficulty, err = models.ParseDifficulty(difficulty); err != nil {
		return r, fmt.Errorf("result %d: %w", r.ID, err)
	}
	return r, nil
}

func (r *resultRepository) Insert(ctx context.Context, result models.GameResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("inserting result: player=%s session=%s score=%d", result.PlayerID, result.SessionID, result.Score)

	query, args, err := sqlBuilder.Insert("game_results").
		Columns(resultColumns[1:]...).
		Values(result.PlayerID, result.SessionID, result.Mode.String(), result.Difficulty.String(),
			result.CorrectAnswers, result.TotalProblems, result.Accuracy, result.TimeElapsed,
			result.Score, result.Rank, result.CompletedAt.UTC()).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert result: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Debug("result inserted: id=%d", id)
	return id, nil
}

func (r *resultRepository) GetBySession(ctx context.Context, sessionID string) (*models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("getting result: session=%s", sessionID)

	query, args, err := sqlBuilder.Select(resultColumns...).
		From("game_results").
		Where("session_id = ?", sessionID).
		ToSql()
	if err != nil {
		return nil, err
	}

	result, err := scanResult(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("result not found: session=%s", sessionID)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get result: %v", err)
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("listing results with filter: player=%s mode=%v difficulty=%v limit=%d offset=%d",
		filter.PlayerID, filter.Mode, filter.Difficulty, filter.Limit, filter.Offset)

	limit, offset := pageBounds(filter)
	query, args, err := resultFilter(sqlBuilder.Select(resultColumns...).From("game_results"), filter).
		OrderBy("completed_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, err
	}
	defer rows.Close()

	results := []models.GameResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			log.Error("failed to scan result row: %v", err)
			return nil, err
		}
		results = append(results, result)
	}
	log.Debug("found %d results", len(results))
	return results, rows.Err()
}

func (r *resultRepository) Count(ctx context.Context, filter models.ResultFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")

	query, args, err := resultFilter(sqlBuilder.Select("COUNT(*)").From("game_results"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count results: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *resultRepository) Stats(ctx context.Context, playerID string) (*models.ResultStats, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("computing stats: player=%s", playerID)

	stats := &models.ResultStats{
		BestScores:    map[string]int{},
		AverageScores: map[string]float64{},
	}

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		var avgAccuracy sql.NullFloat64
		err := tx.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(correct_answers), 0), COALESCE(SUM(total_problems), 0), AVG(accuracy)
FROM game_results
WHERE player_id = ?
`, playerID).Scan(&stats.TotalGames, &stats.TotalCorrect, &stats.TotalProblems, &avgAccuracy)
		if err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		stats.AverageAccuracy = avgAccuracy.Float64

		rows, err := tx.QueryContext(ctx, `
SELECT difficulty, MAX(score), AVG(score)
FROM game_results
WHERE player_id = ?
GROUP BY difficulty
`, playerID)
		if err != nil {
			return fmt.Errorf("per difficulty: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				difficulty string
				best       int
				avg        float64
			)
			if err := rows.Scan(&difficulty, &best, &avg); err != nil {
				return fmt.Errorf("scan per difficulty: %w", err)
			}
			stats.BestScores[difficulty] = best
			stats.AverageScores[difficulty] = avg
		}
		return rows.Err()
	})
	if err != nil {
		log.Error("failed to compute stats: %v", err)
		return nil, err
	}

	log.Debug("stats computed: games=%d", stats.TotalGames)
	return stats, nil
}

// BestScores returns the top result per difficulty, easiest first. Ties go to
// the earlier game.
func (r *resultRepository) BestScores(ctx context.Context, playerID string) ([]models.BestScore, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("fetching best scores: player=%s", playerID)

	rows, err := r.db.QueryContext(ctx, `
SELECT r.difficulty, r.score, r.completed_at
FROM game_results r
WHERE r.player_id = ?
  AND r.id = (
    SELECT b.id FROM game_results b
    WHERE b.player_id = r.player_id AND b.difficulty = r.difficulty
    ORDER BY b.score DESC, b.completed_at ASC, b.id ASC
    LIMIT 1
  )
`, playerID)
	if err != nil {
		log.Error("failed to query best scores: %v", err)
		return nil, err
	}
	defer rows.Close()

	best := []models.BestScore{}
	for rows.Next() {
		var (
			bs         models.BestScore
			difficulty string
		)
		if err := rows.Scan(&difficulty, &bs.Score, &bs.CompletedAt); err != nil {
			log.Error("failed to scan best score: %v", err)
			return nil, err
		}
		if bs.Difficulty, err = models.ParseDifficulty(difficulty); err != nil {
			log.Warn("skipping best score with unknown difficulty %q", difficulty)
			continue
		}
		best = append(best, bs)
	}
	sort.Slice(best, func(i, j int) bool { return best[i].Difficulty < best[j].Difficulty })
	return best, rows.Err()
}
