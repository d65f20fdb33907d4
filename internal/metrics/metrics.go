package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics RAG流水线指标收集器
type Metrics struct {
	queriesCounter  *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	providerErrors  *prometheus.CounterVec
	retrievedChunks prometheus.Histogram
}

var (
	instance *Metrics
	once     sync.Once
)

// NewMetrics 创建指标收集器。指标注册到默认registry，
// 进程内只注册一次，重复调用返回同一实例。
func NewMetrics() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			queriesCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rag_queries_total",
					Help: "Total number of RAG queries processed",
				},
				[]string{"status"}, // status: success, failed
			),
			stageDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "rag_stage_duration_seconds",
					Help:    "Duration of RAG pipeline stages",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"stage"},
			),
			providerErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rag_provider_errors_total",
					Help: "Total number of external provider errors",
				},
				[]string{"provider"}, // provider: embedding, generation
			),
			retrievedChunks: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "rag_retrieved_chunks",
					Help:    "Number of chunks returned per retrieval",
					Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
				},
			),
		}
	})
	return instance
}

// ObserveQuery 记录一次查询的最终状态
func (m *Metrics) ObserveQuery(status string) {
	if m == nil {
		return
	}
	m.queriesCounter.WithLabelValues(status).Inc()
}

// ObserveStage 记录阶段耗时
func (m *Metrics) ObserveStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveProviderError 记录外部服务错误
func (m *Metrics) ObserveProviderError(provider string) {
	if m == nil {
		return
	}
	m.providerErrors.WithLabelValues(provider).Inc()
}

// ObserveRetrievedChunks 记录单次检索返回的分块数量
func (m *Metrics) ObserveRetrievedChunks(count int) {
	if m == nil {
		return
	}
	m.retrievedChunks.Observe(float64(count))
}
