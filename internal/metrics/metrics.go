// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果のラベル値
const (
	LoginSucceeded = "success"
	LoginFailed    = "invalid_credentials"
	LoginRejected  = "validation_failed"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordValidationFailure(form string)
	RecordGuardOutcome(outcome string)
	RecordLogin(result string)
	RecordPasswordReset(stage string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	validationFailures *prometheus.CounterVec
	guardOutcomes      *prometheus.CounterVec
	logins             *prometheus.CounterVec
	passwordResets     *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
	sessionsCleaned    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_validation_failures_total",
			Help: "フォーム別の入力検証エラー数",
		}, []string{"form"}),
		guardOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_guard_outcomes_total",
			Help: "ルートガードの判定結果別の数",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_login_attempts_total",
			Help: "結果別のログイン試行数",
		}, []string{"result"}),
		passwordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_password_resets_total",
			Help: "段階別のパスワードリセット数",
		}, []string{"stage"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookstore_request_latency_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookstore_sessions_cleaned_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.validationFailures,
		c.guardOutcomes,
		c.logins,
		c.passwordResets,
		c.httpStatus,
		c.requestLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordValidationFailure はフォームの検証エラーを記録する。
func (c *Collector) RecordValidationFailure(form string) {
	c.validationFailures.WithLabelValues(form).Inc()
}

// RecordGuardOutcome はルートガードの判定結果を記録する。
func (c *Collector) RecordGuardOutcome(outcome string) {
	c.guardOutcomes.WithLabelValues(outcome).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordPasswordReset はパスワードリセットの段階（requested / completed）を記録する。
func (c *Collector) RecordPasswordReset(stage string) {
	c.passwordResets.WithLabelValues(stage).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除されたセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// NewHTTPMiddleware はレスポンスのステータスコードと処理時間を記録するミドルウェアを返す。
// 何も書き込まずに戻ったハンドラーは200として数える。
func NewHTTPMiddleware(m MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordHTTPStatus(status)
			m.RecordRequestLatency(time.Since(start))
		})
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// workerプロセスなど、APIルーターを持たないプロセスで使用する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
