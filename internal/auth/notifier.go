package auth

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hitoshi/bookstore/internal/model"
)

// ResetNotifier はパスワードリセットのリンクをユーザーへ届ける。
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *model.User, resetURL string) error
}

// LogNotifier はリセットリンクを構造化ログに出力するResetNotifier。
// メール送信基盤を持たない環境で使う。
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier はLogNotifierを生成する。loggerがnilの場合はslog.Default()を使う。
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyPasswordReset はリセットリンクをログに出力する。
func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, user *model.User, resetURL string) error {
	n.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", user.ID),
		slog.String("reset_url", resetURL),
	)
	return nil
}

// buildResetURL はフロントエンドのリセット画面URLを組み立てる。
func buildResetURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}
