package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bookstore/internal/middleware"
	"github.com/hitoshi/bookstore/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// MetricsRecorder はハンドラーが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordValidationFailure(form string)
	RecordLogin(result string)
	RecordPasswordReset(stage string)
}

// noopMetrics はメトリクスを記録しない実装。テストや未設定時に使用する。
type noopMetrics struct{}

func (noopMetrics) RecordValidationFailure(string) {}
func (noopMetrics) RecordLogin(string)             {}
func (noopMetrics) RecordPasswordReset(string)     {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// errorResponder はサービス層のエラーをレスポンスに変換し、検証エラーをフォーム単位で記録する。
type errorResponder struct {
	metrics MetricsRecorder
}

// handle はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// formは検証エラーをメトリクスに記録する際のフォーム名。
func (e errorResponder) handle(w http.ResponseWriter, r *http.Request, form string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeValidationFailed {
			e.metrics.RecordValidationFailure(form)
		}
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeWrongPassword:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidResetToken:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeUserNotFound, model.ErrCodeCategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 失敗した場合は400レスポンスを書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return false
	}
	return true
}

// requireUser はコンテキストの認証済みユーザーを返す。
// ガードの内側で使う前提だが、未認証の場合は401を書き込みnilを返す。
func requireUser(w http.ResponseWriter, r *http.Request) *model.User {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return nil
	}
	return user
}
