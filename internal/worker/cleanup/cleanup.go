// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// workerプロセスから日次で実行する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultInterval はジョブの既定実行間隔。
const DefaultInterval = 24 * time.Hour

// SessionPurger は期限切れセッションを削除するストア。
// repository.SessionRepositoryが満たす。
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Recorder は削除件数を記録する。metrics.Collectorが満たす。
type Recorder interface {
	RecordSessionsCleaned(n int64)
}

// Job は期限切れセッションの削除ジョブ。冪等で、対象がなくてもエラーにならない。
type Job struct {
	sessions SessionPurger
	recorder Recorder
	logger   *slog.Logger
}

// NewJob は新しいJobを生成する。recorderはnilでもよい。
func NewJob(sessions SessionPurger, recorder Recorder, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{sessions: sessions, recorder: recorder, logger: logger}
}

// Run は期限切れセッションを1回削除する。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsCleaned(deleted)
	}

	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// initialRetryDelay は失敗後の最初の再試行までの遅延。
const initialRetryDelay = time.Minute

// nextDelay は次回実行までの待ち時間を返す。
// 連続失敗時は1分から2倍ずつ延ばし、interval を上限とする。
func nextDelay(consecutiveErrors int, interval time.Duration) time.Duration {
	if consecutiveErrors == 0 {
		return interval
	}
	delay := initialRetryDelay
	for i := 1; i < consecutiveErrors; i++ {
		delay *= 2
		if delay >= interval {
			return interval
		}
	}
	if delay > interval {
		return interval
	}
	return delay
}

// Start は起動直後に1回実行し、以降interval間隔で実行する。
// 失敗した場合はnextDelayに従って早めに再試行する。
// コンテキストがキャンセルされるまで戻らない。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	j.logger.Info("セッションクリーンアップを開始しました",
		slog.Duration("interval", interval),
	)

	consecutiveErrors := 0
	for {
		if err := j.Run(ctx); err != nil {
			consecutiveErrors++
		} else {
			consecutiveErrors = 0
		}

		delay := nextDelay(consecutiveErrors, interval)
		if consecutiveErrors > 0 {
			j.logger.Warn("セッションクリーンアップを再試行します",
				slog.Int("consecutive_errors", consecutiveErrors),
				slog.Duration("retry_in", delay),
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("セッションクリーンアップを停止しました")
			return
		case <-timer.C:
		}
	}
}
