// metrics содержит Prometheus-коллекторы сервиса.
//
// Коллекторы регистрируются в prometheus.DefaultRegisterer через promauto
// и отдаются на /metrics через promhttp.
//
// Агрегатор:
//   - sportsfeed_fetch_total{collection, stage, result} — выборки из хранилища;
//   - sportsfeed_fetch_duration_seconds{collection, stage} — длительность выборок;
//   - sportsfeed_degraded_total{stage} — вторичные выборки, завершившиеся деградацией.
//
// HTTP:
//   - sportsfeed_http_requests_total{route, method, status};
//   - sportsfeed_http_request_duration_seconds{route, method}.
//
// Кэш:
//   - sportsfeed_cache_total{result} — hit / miss / error.
//
// Хранилище:
//   - sportsfeed_breaker_state{name} — 0 closed, 1 half-open, 2 open.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Этапы агрегации (значения метки stage).
const (
	StagePrimary     = "primary"
	StageReference   = "reference"
	StageTranslation = "translation"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsfeed_fetch_total",
		Help: "Store fetches by collection, aggregation stage and result.",
	}, []string{"collection", "stage", "result"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sportsfeed_fetch_duration_seconds",
		Help:    "Store fetch latency by collection and aggregation stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "stage"})

	DegradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsfeed_degraded_total",
		Help: "Secondary fetches that failed and were degraded to absent data.",
	}, []string{"stage"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsfeed_http_requests_total",
		Help: "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sportsfeed_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	CacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsfeed_cache_total",
		Help: "Result cache lookups by outcome.",
	}, []string{"result"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sportsfeed_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})
)

// Result переводит ошибку в значение метки result.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
