package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bookstore/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 入力検証エラーではErrorsにフィールドパスごとのメッセージを含む。
// RequestIDは問い合わせ時にログと突き合わせるためのID。
type ErrorResponseBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Action    string            `json:"action"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// newErrorResponseBody はAPIErrorからレスポンスボディを組み立てる。
// リクエストIDはRequestIDミドルウェアが設定したレスポンスヘッダーから取る。
func newErrorResponseBody(w http.ResponseWriter, apiErr *model.APIError) ErrorResponseBody {
	return ErrorResponseBody{
		Code:      apiErr.Code,
		Message:   apiErr.Message,
		Category:  apiErr.Category,
		Action:    apiErr.Action,
		Errors:    apiErr.Fields,
		RequestID: w.Header().Get(RequestIDHeader),
	}
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSONBody(w, statusCode, newErrorResponseBody(w, apiErr))
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

func writeJSONBody(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
