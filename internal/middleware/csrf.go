package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/bookstore/internal/model"
)

const (
	// csrfCookieName はフロントエンドが読み取ってヘッダーへ写すためHttpOnlyにしない。
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"

	defaultCSRFCookieMaxAge = 24 * time.Hour
	csrfTokenBytes          = 32
)

var (
	errCSRFCookieMissing = errors.New("missing cookie token")
	errCSRFHeaderMissing = errors.New("missing header token")
	errCSRFTokenMismatch = errors.New("token mismatch")
)

// CSRFConfig はCSRFトークンCookieの属性。
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
	// CookieMaxAge が0なら24時間。
	CookieMaxAge time.Duration
}

func (c CSRFConfig) maxAge() time.Duration {
	if c.CookieMaxAge > 0 {
		return c.CookieMaxAge
	}
	return defaultCSRFCookieMaxAge
}

// issue は新しいトークンを発行してCookieに載せる。
func (c CSRFConfig) issue(w http.ResponseWriter) (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.CookieDomain,
		MaxAge:   int(c.maxAge().Seconds()),
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func csrfCookieValue(r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil {
		return c.Value
	}
	return ""
}

// checkDoubleSubmit はCookieとヘッダーのトークンが一致するかを確かめる。
func checkDoubleSubmit(r *http.Request) error {
	cookieToken := csrfCookieValue(r)
	if cookieToken == "" {
		return errCSRFCookieMissing
	}
	headerToken := r.Header.Get(csrfHeaderName)
	if headerToken == "" {
		return errCSRFHeaderMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
		return errCSRFTokenMismatch
	}
	return nil
}

func readOnlyMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// NewCSRFMiddleware はダブルサブミットCookie方式のCSRF対策ミドルウェアを返す。
// 読み取り系メソッドはトークンCookieを配布するだけで通し、
// 登録・ログイン・設定更新などの状態変更はCookieとヘッダーの一致を要求する。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if readOnlyMethod(r.Method) {
				if csrfCookieValue(r) == "" {
					if _, err := config.issue(w); err != nil {
						slog.ErrorContext(r.Context(), "CSRFトークンの発行に失敗しました", slog.String("error", err.Error()))
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if err := checkDoubleSubmit(r); err != nil {
				slog.WarnContext(r.Context(), "CSRF検証に失敗しました",
					slog.String("reason", err.Error()),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
					Code:     "CSRF_TOKEN_INVALID",
					Message:  "CSRFトークンの検証に失敗しました。",
					Category: "auth",
					Action:   "ページを再読み込みしてから再度お試しください。",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewCSRFTokenHandler はGET /api/csrf-token のハンドラーを返す。
// Cookieに既存トークンがあればそれを返す。
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfCookieValue(r)
		if token == "" {
			var err error
			if token, err = config.issue(w); err != nil {
				slog.ErrorContext(r.Context(), "CSRFトークンの発行に失敗しました", slog.String("error", err.Error()))
				WriteInternalServerError(w)
				return
			}
		}
		writeJSONBody(w, http.StatusOK, map[string]string{"token": token})
	})
}
