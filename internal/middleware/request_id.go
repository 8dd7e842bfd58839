package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader はリクエストIDを返すレスポンスヘッダー。
const RequestIDHeader = "X-Request-Id"

// NewRequestIDMiddleware はリクエストごとのIDを採番し、
// コンテキストとレスポンスヘッダーに設定するミドルウェアを返す。
// クライアントがX-Request-Idを送った場合はその値を引き継ぐ。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(RequestIDHeader, chimw.GetReqID(r.Context()))
			next.ServeHTTP(w, r)
		}))
	}
}

// RequestIDFromContext はリクエストIDを返す。ミドルウェアを通っていない場合は空文字列。
func RequestIDFromContext(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}
