package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/bookstore/internal/model"
)

// PostgresSettingsRepo はPostgreSQLを使用した店舗設定リポジトリ。
// store_settingsテーブルはid=1の1行のみを持つ。
type PostgresSettingsRepo struct {
	db *sql.DB
}

// NewPostgresSettingsRepo はPostgresSettingsRepoを生成する。
func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

// Get は現在の設定を取得する。未保存の場合はnilを返す。
func (r *PostgresSettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	s := &model.Settings{}
	var updatedBy sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT tax_rate, shipping_cost, updated_by, updated_at FROM store_settings WHERE id = 1`,
	).Scan(&s.TaxRate, &s.ShippingCost, &updatedBy, &s.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	s.UpdatedBy = updatedBy.String
	return s, nil
}

// Save は設定をupsertする。
func (r *PostgresSettingsRepo) Save(ctx context.Context, s *model.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO store_settings (id, tax_rate, shipping_cost, updated_by, updated_at)
		 VALUES (1, $1, $2, NULLIF($3, '')::uuid, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET tax_rate = EXCLUDED.tax_rate,
		     shipping_cost = EXCLUDED.shipping_cost,
		     updated_by = EXCLUDED.updated_by,
		     updated_at = EXCLUDED.updated_at`,
		s.TaxRate, s.ShippingCost, s.UpdatedBy, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SettingsRepository = (*PostgresSettingsRepo)(nil)
