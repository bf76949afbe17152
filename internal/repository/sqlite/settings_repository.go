package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a SettingsRepository backed by the settings table
func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no stored value: key=%s", key)
		return "", repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to read setting: %v", err)
		return "", err
	}
	return value, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("storing setting: key=%s", key)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`, key, value)
	if err != nil {
		log.Error("failed to store setting: %v", err)
	}
	return err
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("deleting setting: key=%s", key)

	query, args, err := sqlBuilder.Delete("settings").Where("key = ?", key).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete setting: %v", err)
		return err
	}
	return nil
}
