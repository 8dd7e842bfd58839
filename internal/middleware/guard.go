package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/bookstore/internal/guard"
	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/role"
)

// loadingRetryAfter は認証状態を確認できなかった場合のRetry-After秒数。
const loadingRetryAfter = "1"

// GuardObserver はガードの判定結果を受け取る。メトリクス記録用。
type GuardObserver interface {
	RecordGuardOutcome(outcome string)
}

// GuardResponseBody はガードで遮断したAPIリクエストへのレスポンス。
type GuardResponseBody struct {
	ErrorResponseBody
	Outcome    string `json:"outcome"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// NewGuardMiddleware は要求ロールでアクセスを制御するミドルウェアを返す。
// requiredRoleが空の場合は認証済みであれば通過させる。
// セッションミドルウェアの後に配置する。
func NewGuardMiddleware(requiredRole role.Role, observer GuardObserver) func(next http.Handler) http.Handler {
	return newGuard(observer, func(state guard.AuthState) guard.Decision {
		return guard.Decide(state, requiredRole)
	})
}

// NewGuardFuncMiddleware は任意のロール条件でアクセスを制御するミドルウェアを返す。
// 認証判定はNewGuardMiddlewareと同じで、認証済みかつallowがfalseの場合はホームへ遷移させる。
func NewGuardFuncMiddleware(allow func(userRole string) bool, observer GuardObserver) func(next http.Handler) http.Handler {
	return newGuard(observer, func(state guard.AuthState) guard.Decision {
		d := guard.Decide(state, "")
		if d.Outcome == guard.OutcomeRender && !allow(state.User.Role) {
			return guard.Decision{Outcome: guard.OutcomeRedirectHome, RedirectTo: guard.HomePath, Replace: true}
		}
		return d
	})
}

func newGuard(observer GuardObserver, decide func(guard.AuthState) guard.Decision) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := decide(AuthStateFromContext(r.Context()))
			if observer != nil {
				observer.RecordGuardOutcome(string(d.Outcome))
			}

			if d.Outcome == guard.OutcomeRender {
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("guard blocked request",
				slog.String("outcome", string(d.Outcome)),
				slog.String("path", r.URL.Path),
			)

			if d.Outcome == guard.OutcomeLoading {
				w.Header().Set("Retry-After", loadingRetryAfter)
				writeGuardResponse(w, http.StatusServiceUnavailable, d, &model.APIError{
					Code:     "AUTH_STATE_UNAVAILABLE",
					Message:  "ログイン状態を確認できませんでした。",
					Category: "system",
					Action:   "しばらく待ってから再度お試しください。",
				})
				return
			}

			// 置換遷移: ブラウザのナビゲーションは303で遷移先へ送る
			if wantsHTML(r) {
				http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
				return
			}

			if d.Outcome == guard.OutcomeRedirectLogin {
				writeGuardResponse(w, http.StatusUnauthorized, d, model.NewUnauthorizedError())
				return
			}
			writeGuardResponse(w, http.StatusForbidden, d, model.NewForbiddenError())
		})
	}
}

// wantsHTML はブラウザのページ遷移によるリクエストかを判定する。
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeGuardResponse(w http.ResponseWriter, statusCode int, d guard.Decision, apiErr *model.APIError) {
	writeJSONBody(w, statusCode, GuardResponseBody{
		ErrorResponseBody: newErrorResponseBody(w, apiErr),
		Outcome:           string(d.Outcome),
		RedirectTo:        d.RedirectTo,
	})
}
