package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockPurger はSessionPurgerのモック実装。
type mockPurger struct {
	calls   atomic.Int32
	deleted int64
	err     error
}

func (m *mockPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	return m.deleted, m.err
}

// mockRecorder はRecorderのモック実装。
type mockRecorder struct {
	recorded []int64
}

func (m *mockRecorder) RecordSessionsCleaned(n int64) {
	m.recorded = append(m.recorded, n)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// findLogEntry は指定キーを持つ最初のJSONログ行を返す。
func findLogEntry(t *testing.T, buf *bytes.Buffer, key string) map[string]interface{} {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if _, ok := entry[key]; ok {
			return entry
		}
	}
	t.Fatalf("ログに %s が記録されていない。ログ出力: %s", key, buf.String())
	return nil
}

func TestJob_Run_DeletesExpiredSessions(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{deleted: 42}
	recorder := &mockRecorder{}
	job := NewJob(purger, recorder, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	if got := purger.calls.Load(); got != 1 {
		t.Errorf("DeleteExpired calls = %d, want 1", got)
	}
	if len(recorder.recorded) != 1 || recorder.recorded[0] != 42 {
		t.Errorf("recorded = %v, want [42]", recorder.recorded)
	}

	entry := findLogEntry(t, &buf, "deleted_count")
	if entry["deleted_count"] != float64(42) {
		t.Errorf("deleted_count = %v, want 42", entry["deleted_count"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("ログに duration_ms が記録されていない")
	}
}

func TestJob_Run_NothingToDelete(t *testing.T) {
	var buf bytes.Buffer
	job := NewJob(&mockPurger{}, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("削除対象がない場合もエラーにならないこと: %v", err)
	}
}

func TestJob_Run_ReturnsErrorOnFailure(t *testing.T) {
	var buf bytes.Buffer
	dbErr := errors.New("connection refused")
	recorder := &mockRecorder{}
	job := NewJob(&mockPurger{err: dbErr}, recorder, newTestLogger(&buf))

	err := job.Run(context.Background())
	if !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want wrapped %v", err, dbErr)
	}
	if len(recorder.recorded) != 0 {
		t.Errorf("失敗時は削除件数を記録しないこと: %v", recorder.recorded)
	}

	entry := findLogEntry(t, &buf, "error")
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
}

func TestJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{}
	job := NewJob(purger, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for purger.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("起動直後に実行されなかった")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("キャンセル後に停止しなかった")
	}
}

func TestJob_Start_RunsOnEveryTick(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{}
	job := NewJob(purger, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go job.Start(ctx, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for purger.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("calls = %d, want >= 3", purger.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name     string
		errors   int
		interval time.Duration
		want     time.Duration
	}{
		{"成功時は通常間隔", 0, 24 * time.Hour, 24 * time.Hour},
		{"1回目の失敗", 1, 24 * time.Hour, time.Minute},
		{"2回目の失敗", 2, 24 * time.Hour, 2 * time.Minute},
		{"5回目の失敗", 5, 24 * time.Hour, 16 * time.Minute},
		{"上限はinterval", 20, 24 * time.Hour, 24 * time.Hour},
		{"intervalが初回遅延より短い", 1, 10 * time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextDelay(tt.errors, tt.interval); got != tt.want {
				t.Errorf("nextDelay(%d, %v) = %v, want %v", tt.errors, tt.interval, got, tt.want)
			}
		})
	}
}
