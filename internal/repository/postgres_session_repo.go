package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/bookstore/internal/model"
)

const sessionColumns = `id, user_id, expires_at, created_at`

// PostgresSessionRepo はログインセッションをsessionsテーブルに保存する。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (` + sessionColumns + `) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.ExpiresAt, s.CreatedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は有効期限内のセッションだけを返す。なければnil。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND expires_at > now()`

	var s model.Session
	switch err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.deleteWhere(ctx, "session", `id = $1`, id)
	return err
}

// DeleteByUserID はパスワード変更・リセット時に使う。
// 変更操作を行ったセッション(exceptID)だけは残す。
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID, exceptID string) error {
	_, err := r.deleteWhere(ctx, "user sessions", `user_id = $1 AND id <> $2`, userID, exceptID)
	return err
}

// DeleteExpired はクリーンアップワーカーから呼ばれ、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return r.deleteWhere(ctx, "expired sessions", `expires_at <= now()`)
}

func (r *PostgresSessionRepo) deleteWhere(ctx context.Context, what, cond string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE `+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted %s: %w", what, err)
	}
	return n, nil
}

var _ SessionRepository = (*PostgresSessionRepo)(nil)
