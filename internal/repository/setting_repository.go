package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

const settingColumns = "key, value, type, description, updated_by, updated_at"

// SettingRepository reads and writes runtime settings.
type SettingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// List returns every setting ordered by key.
func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	items := []models.Setting{}
	if err := r.db.SelectContext(ctx, &items, `SELECT `+settingColumns+` FROM settings ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return items, nil
}

// Get returns one setting.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, `SELECT `+settingColumns+` FROM settings WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &setting, nil
}

// Upsert writes a setting, keeping the existing description when none is given.
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	setting.UpdatedAt = time.Now().UTC()
	return upsertSetting(ctx, r.db, setting)
}

func upsertSetting(ctx context.Context, ext sqlx.ExtContext, setting *models.Setting) error {
	const query = `INSERT INTO settings (key, value, type, description, updated_by, updated_at) VALUES (:key, :value, :type, :description, :updated_by, :updated_at)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type, description = COALESCE(EXCLUDED.description, settings.description), updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, setting); err != nil {
		return fmt.Errorf("upsert setting %s: %w", setting.Key, err)
	}
	return nil
}
