// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/bookstore/internal/metrics"
	"github.com/hitoshi/bookstore/internal/middleware"
	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/role"
	"github.com/hitoshi/bookstore/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in validation.RegisterInput) (*model.User, *model.Session, error)
	Login(ctx context.Context, in validation.LoginInput) (*model.User, *model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	RequestPasswordReset(ctx context.Context, in validation.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, in validation.ResetPasswordInput) error
	ChangePassword(ctx context.Context, userID, currentSessionID string, in validation.ChangePasswordInput) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は会員登録・ログイン・パスワード管理のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics MetricsRecorder
	errors  errorResponder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, m MetricsRecorder) *AuthHandler {
	m = metricsOrNoop(m)
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: m,
		errors:  errorResponder{metrics: m},
	}
}

// userResponse はログインユーザー情報のAPIレスポンス。
// ロール表示用のラベルとバッジクラスを含む。
type userResponse struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	RoleLabel  string      `json:"role_label"`
	BadgeClass string      `json:"badge_class"`
	Status     role.Status `json:"status"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		RoleLabel:  role.DisplayName(u.Role),
		BadgeClass: role.BadgeClass(u.Role),
		Status:     role.Check(u),
	}
}

// Register は会員登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in validation.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, session, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.errors.handle(w, r, validation.RegisterSchema.Name, err)
		return
	}

	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login はメールアドレスとパスワードによるログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in validation.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, session, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.metrics.RecordLogin(loginResult(err))
		h.errors.handle(w, r, validation.LoginSchema.Name, err)
		return
	}
	h.metrics.RecordLogin(metrics.LoginSucceeded)

	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// loginResult はログイン失敗のエラーをメトリクスのラベル値に変換する。
func loginResult(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeValidationFailed:
			return metrics.LoginRejected
		case model.ErrCodeInvalidCredentials:
			return metrics.LoginFailed
		}
	}
	return "error"
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			// ログアウト失敗してもCookieはクリアする
			slog.ErrorContext(r.Context(), "failed to logout", slog.String("error", logoutErr.Error()))
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	state := middleware.AuthStateFromContext(r.Context())
	if state.IsLoading {
		w.Header().Set("Retry-After", "1")
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
			Code:     "AUTH_STATE_UNAVAILABLE",
			Message:  "ログイン状態を確認できませんでした。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}
	if state.User == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(state.User))
}

// ForgotPassword はパスワードリセットの申請を受け付ける。
// メールアドレスの登録有無に関わらず同じレスポンスを返す。
// POST /auth/password/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in validation.ForgotPasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), in); err != nil {
		h.errors.handle(w, r, validation.ForgotPasswordSchema.Name, err)
		return
	}
	h.metrics.RecordPasswordReset("requested")

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// ResetPassword はリセットトークンで新しいパスワードを設定する。
// POST /auth/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in validation.ResetPasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), in); err != nil {
		h.errors.handle(w, r, validation.ResetPasswordSchema.Name, err)
		return
	}
	h.metrics.RecordPasswordReset("completed")

	// 全セッションが失効しているため、手元のCookieも消す
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword はログイン中のユーザーのパスワードを変更する。
// 現在のセッションは維持し、他のセッションを失効させる。
// PUT /api/users/me/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var in validation.ChangePasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), user.ID, sessionID, in); err != nil {
		h.errors.handle(w, r, validation.ChangePasswordSchema.Name, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setSessionCookie はHTTP OnlyのセッションCookieを設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *model.Session) {
	maxAge := h.config.SessionMaxAge
	if !session.ExpiresAt.IsZero() {
		if remaining := int(time.Until(session.ExpiresAt).Seconds()); remaining > 0 && remaining < maxAge {
			maxAge = remaining
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
