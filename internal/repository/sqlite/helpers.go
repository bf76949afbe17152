package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// resultFilter applies the WHERE clauses shared by List and Count.
func resultFilter(query squirrel.SelectBuilder, filter models.ResultFilter) squirrel.SelectBuilder {
	if filter.PlayerID != "" {
		query = query.Where(squirrel.Eq{"player_id": filter.PlayerID})
	}
	if filter.Mode != nil {
		query = query.Where(squirrel.Eq{"mode": filter.Mode.String()})
	}
	if filter.Difficulty != nil {
		query = query.Where(squirrel.Eq{"difficulty": filter.Difficulty.String()})
	}
	return query
}

func pageBounds(filter models.ResultFilter) (uint64, uint64) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}

// inTx runs fn in one transaction so related aggregates see one snapshot.
func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	return nil
}
