package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	once sync.Once

	httpRequestTotal   *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
	hostingCallTotal   *prometheus.CounterVec
	hostingCallLatency *prometheus.HistogramVec
	deployOutcomeTotal *prometheus.CounterVec
)

// Init 注册指标，重复调用安全
func Init(reg prometheus.Registerer) {
	once.Do(func() {
		httpRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant_deployer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"})

		httpRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenant_deployer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"})

		hostingCallTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant_deployer",
			Subsystem: "hosting",
			Name:      "calls_total",
			Help:      "Count of hosting platform API calls",
		}, []string{"operation", "status"})

		hostingCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenant_deployer",
			Subsystem: "hosting",
			Name:      "call_duration_seconds",
			Help:      "Latency distribution of hosting platform API calls",
			Buckets:   histogramBuckets,
		}, []string{"operation", "status"})

		deployOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant_deployer",
			Subsystem: "deploy",
			Name:      "outcomes_total",
			Help:      "Provisioning runs by resulting deployment status",
		}, []string{"status"})

		register(reg, httpRequestTotal, httpRequestLatency, hostingCallTotal, hostingCallLatency, deployOutcomeTotal)
	})
}

func register(reg prometheus.Registerer, cs ...prometheus.Collector) {
	if reg == nil {
		return
	}
	for _, c := range cs {
		// 已注册时沿用本包的实例即可，进程内只会 Init 一次
		_ = reg.Register(c)
	}
}

// ObserveHTTP 记录一次 HTTP 请求
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if httpRequestTotal == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	httpRequestTotal.With(labels).Inc()
	httpRequestLatency.With(labels).Observe(d.Seconds())
}

// ObserveHostingCall 记录一次托管平台调用，status 为 HTTP 状态码，0 表示传输失败
func ObserveHostingCall(operation string, status int, d time.Duration) {
	if hostingCallTotal == nil {
		return
	}
	labels := prometheus.Labels{"operation": operation, "status": strconv.Itoa(status)}
	hostingCallTotal.With(labels).Inc()
	hostingCallLatency.With(labels).Observe(d.Seconds())
}

// IncDeployOutcome 记录编排结果
func IncDeployOutcome(status string) {
	if deployOutcomeTotal == nil {
		return
	}
	deployOutcomeTotal.WithLabelValues(status).Inc()
}
