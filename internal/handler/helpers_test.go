package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hitoshi/bookstore/internal/guard"
	"github.com/hitoshi/bookstore/internal/middleware"
	"github.com/hitoshi/bookstore/internal/model"
)

// --- テストヘルパー ---

// withUser はテスト用にリクエストコンテキストへ認証済みユーザーを注入する。
func withUser(r *http.Request, user *model.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), user))
}

// withLoadingState は認証状態が確認中のコンテキストを注入する。
func withLoadingState(r *http.Request) *http.Request {
	return r.WithContext(middleware.ContextWithAuthState(r.Context(), guard.AuthState{IsLoading: true}))
}

// parseAPIErrorResponse はレスポンスボディから統一エラーレスポンスをパースする。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var result middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// decodeBody はレスポンスボディをvにデコードする。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// spyMetrics は記録されたメトリクスを保持するMetricsRecorder。
type spyMetrics struct {
	mu          sync.Mutex
	validations []string
	logins      []string
	resets      []string
}

func (s *spyMetrics) RecordValidationFailure(form string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validations = append(s.validations, form)
}

func (s *spyMetrics) RecordLogin(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, result)
}

func (s *spyMetrics) RecordPasswordReset(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, stage)
}
