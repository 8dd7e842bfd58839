package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/bookstore/internal/model"
)

var requestLogContextKey = contextKey("request_log")

// requestLog は内側のミドルウェアがアクセスログへ追記する情報。
// ログ出力は外側で行うため、ポインタで共有する。
type requestLog struct {
	userID string
	role   string
}

// annotateRequestLog は認証済みユーザーをアクセスログに記録する。
// ロギングミドルウェアの外で呼ばれた場合は何もしない。
func annotateRequestLog(ctx context.Context, user *model.User) {
	if rl, ok := ctx.Value(requestLogContextKey).(*requestLog); ok && user != nil {
		rl.userID = user.ID
		rl.role = user.Role
	}
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、status、duration_msを含む。リクエストIDと認証ユーザーは分かる場合のみ付与する。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			info := &requestLog{}
			ctx := context.WithValue(r.Context(), requestLogContextKey, info)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Float64("duration_ms", durationMs),
			}
			if id := RequestIDFromContext(r); id != "" {
				args = append(args, slog.String("request_id", id))
			}
			if info.userID != "" {
				args = append(args, slog.String("user_id", info.userID), slog.String("role", info.role))
			}

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
