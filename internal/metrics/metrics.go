package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "puzzle_sessions_started_total",
		Help: "Total number of puzzle rounds started",
	})
	SessionsFinishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "puzzle_sessions_finished_total",
		Help: "Total number of puzzle rounds with every country resolved",
	})
	ShapesResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "puzzle_shapes_resolved_total",
		Help: "Resolved shapes by outcome (correct/incorrect)",
	}, []string{"outcome"})
	DropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "puzzle_drops_total",
		Help: "Drag-end events by result (correct/missed/ignored)",
	}, []string{"result"})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "puzzle_sessions_active",
		Help: "Rounds started and not yet finished in this process",
	})
	CountriesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "puzzle_countries_loaded",
		Help: "Number of countries in the active catalog",
	})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "puzzle_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	RepoErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "puzzle_repo_errors_total",
		Help: "Session repository failures by operation",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(SessionsStartedTotal)
	prometheus.MustRegister(SessionsFinishedTotal)
	prometheus.MustRegister(ShapesResolvedTotal)
	prometheus.MustRegister(DropsTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(CountriesLoaded)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RepoErrorsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
