package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: длительность полного прогона evaluator по организации
	EvaluationDuration *prometheus.HistogramVec

	// Сколько исключений создано, в разрезе типа правила
	ExceptionsCreated *prometheus.CounterVec

	// Отказы отдельных правил внутри прогона (partial failure)
	RuleErrors *prometheus.CounterVec

	// Кэш статистики: попадания/промахи
	StatsCacheHits   prometheus.Counter
	StatsCacheMisses prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		EvaluationDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_evaluation_duration_seconds",
			Help:    "Histogram of tolerance evaluation run latencies.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"organization_id"}),

		ExceptionsCreated: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_exceptions_created_total",
			Help: "Total number of exceptions created by the evaluator.",
		}, []string{"rule_type"}),

		RuleErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_rule_evaluation_errors_total",
			Help: "Total number of per-rule evaluation failures.",
		}, []string{"rule_type"}),

		StatsCacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "console_stats_cache_hits_total",
			Help: "Dashboard stats served from Redis cache.",
		}),

		StatsCacheMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "console_stats_cache_misses_total",
			Help: "Dashboard stats recomputed from Postgres.",
		}),
	}
}
