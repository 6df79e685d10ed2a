package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 缓存结果标签
const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultAdmit  = "admit"
	ResultUpdate = "update"
)

// 字节流方向标签
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Metrics 节点上所有 storlet 共用的 prometheus 指标
type Metrics struct {
	Invocations  *prometheus.CounterVec
	CacheResults *prometheus.CounterVec
	Evictions    prometheus.Counter
	Bytes        *prometheus.CounterVec
	Errors       *prometheus.CounterVec
	Occupancy    prometheus.Gauge
}

// NewMetrics 创建指标并注册到 reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	invocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storlet_invocations_total",
		Help: "Total storlet invocations",
	}, []string{"storlet", "op"})

	cacheResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storlet_cache_results_total",
		Help: "Cache index outcomes per operation",
	}, []string{"op", "result"})

	evictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storlet_cache_evictions_total",
		Help: "Total objects evicted from the cache",
	})

	bytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storlet_bytes_total",
		Help: "Total object bytes streamed through storlets",
	}, []string{"direction"})

	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storlet_errors_total",
		Help: "Storlet errors by stage",
	}, []string{"stage"})

	occupancy := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storlet_cache_occupancy_bytes",
		Help: "Bytes currently admitted by the cache index",
	})

	reg.MustRegister(invocations, cacheResults, evictions, bytes, errs, occupancy)

	return &Metrics{
		Invocations:  invocations,
		CacheResults: cacheResults,
		Evictions:    evictions,
		Bytes:        bytes,
		Errors:       errs,
		Occupancy:    occupancy,
	}
}
