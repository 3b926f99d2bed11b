package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry 独立的 prometheus 注册表，不使用全局默认注册表
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP 请求总数"},
		[]string{"method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP 请求耗时（秒）", Buckets: prometheus.DefBuckets},
		[]string{"method", "status"},
	)

	// OptimizationRuns 按最终状态统计优化任务数量
	OptimizationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimization_runs_total", Help: "已结束的优化任务数量"},
		[]string{"status"},
	)
	OptimizationRunsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optimization_runs_in_flight", Help: "正在运行的优化任务数量"},
	)
	OptimizationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimization_run_duration_seconds", Help: "优化任务耗时（秒）", Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}},
		[]string{"status"},
	)
	Generations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimization_generations_total", Help: "已完成的进化代数"},
	)
	BestFitness = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optimization_best_fitness", Help: "最近一代的最优适应度（覆盖人口）"},
	)
)

var regOnce sync.Once

// RegisterDefault 注册所有指标以及 Go 运行时和进程指标，可以重复调用
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			OptimizationRuns,
			OptimizationRunsInFlight,
			OptimizationDuration,
			Generations,
			BestFitness,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// ObserveGeneration 每一代结束之后调用
func ObserveGeneration(best float64) {
	Generations.Inc()
	BestFitness.Set(best)
}
