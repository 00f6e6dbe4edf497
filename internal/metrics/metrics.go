// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLoginSuccess(application string)
	RecordLoginFailure(reason string)
	RecordAuthorisationDenied()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordListCreated()
	RecordItemsAdded(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess   *prometheus.CounterVec
	loginFail      *prometheus.CounterVec
	authzDenied    prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	listsCreated   prometheus.Counter
	itemsAdded     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopwithme_login_success_total",
			Help: "アプリケーション別のログイン成功の合計数",
		}, []string{"application"}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopwithme_login_fail_total",
			Help: "失敗理由別のログイン失敗の合計数",
		}, []string{"reason"}),
		authzDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopwithme_authorisation_denied_total",
			Help: "APIアクセストークン検証で拒否されたリクエストの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopwithme_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopwithme_request_latency_seconds",
			Help:    "APIリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		listsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopwithme_lists_created_total",
			Help: "作成された買い物リストの合計数",
		}),
		itemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopwithme_items_added_total",
			Help: "リストに追加された項目の合計数",
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.authzDenied,
		c.httpStatus,
		c.requestLatency,
		c.listsCreated,
		c.itemsAdded,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess(application string) {
	c.loginSuccess.WithLabelValues(application).Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

// RecordAuthorisationDenied はトークン検証による拒否を記録する。
func (c *Collector) RecordAuthorisationDenied() {
	c.authzDenied.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordListCreated はリスト作成を記録する。
func (c *Collector) RecordListCreated() {
	c.listsCreated.Inc()
}

// RecordItemsAdded は追加された項目数を記録する。
func (c *Collector) RecordItemsAdded(count int) {
	c.itemsAdded.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
