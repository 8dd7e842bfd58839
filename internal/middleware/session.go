// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bookstore/internal/auth"
	"github.com/hitoshi/bookstore/internal/guard"
	"github.com/hitoshi/bookstore/internal/model"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	authStateContextKey = contextKey("auth_state")
	sessionIDContextKey = contextKey("session_id")
)

// UserResolver はセッションIDから現在のユーザーを解決するインターフェース。
// セッションが無効な場合はauth.ErrSessionNotFoundを返す。
type UserResolver interface {
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 認証状態のスナップショットをリクエストコンテキストに注入する。
//
// このミドルウェア自体はリクエストを拒否しない。アクセス制御はGuardが行う。
// セッションストアの参照に失敗した場合は未認証ではなく「確認中」として扱う。
func NewSessionMiddleware(resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r.WithContext(ContextWithAuthState(r.Context(), guard.AuthState{})))
				return
			}

			state := guard.AuthState{}
			user, err := resolver.GetCurrentUser(r.Context(), cookie.Value)
			switch {
			case err == nil:
				state.User = user
			case errors.Is(err, auth.ErrSessionNotFound):
				// 期限切れ・削除済みセッションは未認証
			default:
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				state.IsLoading = true
			}

			ctx := ContextWithAuthState(r.Context(), state)
			if state.User != nil {
				ctx = context.WithValue(ctx, sessionIDContextKey, cookie.Value)
				annotateRequestLog(ctx, state.User)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithAuthState はコンテキストに認証状態を注入する。
// テストやミドルウェア以外のコンテキスト生成でも使用する。
func ContextWithAuthState(ctx context.Context, state guard.AuthState) context.Context {
	return context.WithValue(ctx, authStateContextKey, state)
}

// ContextWithUser は認証済みユーザーを持つコンテキストを返す。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return ContextWithAuthState(ctx, guard.AuthState{User: user})
}

// AuthStateFromContext はリクエストコンテキストの認証状態を返す。
// セッションミドルウェアを通過していない場合は未認証の状態を返す。
func AuthStateFromContext(ctx context.Context) guard.AuthState {
	state, _ := ctx.Value(authStateContextKey).(guard.AuthState)
	return state
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
func UserFromContext(ctx context.Context) (*model.User, error) {
	state := AuthStateFromContext(ctx)
	if state.User == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return state.User, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, err := UserFromContext(ctx)
	if err != nil || user.ID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return user.ID, nil
}

// SessionIDFromContext は認証に使われたセッションIDを返す。未認証の場合は空文字列。
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}
