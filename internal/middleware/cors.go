package middleware

import (
	"net/http"
	"strings"
)

var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = strings.Join([]string{"Content-Type", csrfHeaderName}, ", ")
	// フロントエンドがエラー報告にリクエストIDを添えられるよう公開する
	corsExposedHeaders = strings.Join([]string{RequestIDHeader, "Retry-After"}, ", ")
)

const corsPreflightMaxAge = "86400"

// NewCORSMiddleware はフロントエンドのオリジンだけを許可するCORSミドルウェアを返す。
// Cookieを送るためワイルドカードは使わない。
// Originが一致しないリクエストにはCORSヘッダーを付けずに通す。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin := r.Header.Get("Origin"); origin == "" || origin == allowedOrigin {
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
				h.Set("Access-Control-Max-Age", corsPreflightMaxAge)
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
