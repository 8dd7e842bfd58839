// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/bookstore/internal/model"
)

// ErrDuplicateEmail はメールアドレスが既に登録されている場合に返される。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword はパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーのセッションを削除する。
	// exceptIDが空でない場合はそのセッションを残す。
	DeleteByUserID(ctx context.Context, userID, exceptID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// SettingsRepository は店舗設定の永続化インターフェース。
// 設定は1行のみ保持する。
type SettingsRepository interface {
	// Get は現在の設定を取得する。未保存の場合はnilを返す。
	Get(ctx context.Context) (*model.Settings, error)
	// Save は設定を保存（upsert）する。
	Save(ctx context.Context, settings *model.Settings) error
}

// CategoryRepository は書籍カテゴリの永続化インターフェース。
type CategoryRepository interface {
	// List は全カテゴリをsort_order、name順で返す。
	List(ctx context.Context) ([]*model.Category, error)
	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Category, error)
}

// BookRepository は書籍の検索インターフェース。
type BookRepository interface {
	// Search は条件に一致する書籍と、ページング前の総件数を返す。
	// Queryはタイトルと著者の部分一致（大文字小文字を区別しない）、
	// CategoryIDは指定カテゴリとその直下のサブカテゴリに一致する。
	Search(ctx context.Context, params model.BookSearchParams) ([]*model.Book, int, error)
}
