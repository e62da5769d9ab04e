package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 持有应用自己的 Prometheus registry，每个实例独立注册。
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	sales     *prometheus.CounterVec
	soldUnits prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "it_store",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "it_store",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "it_store",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms ~ 5s
		}, []string{"method", "path"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "it_store",
			Subsystem: "sales",
			Name:      "attempts_total",
			Help:      "Sale attempts by result.",
		}, []string{"result"}),
		soldUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "it_store",
			Subsystem: "sales",
			Name:      "units_total",
			Help:      "Units sold.",
		}),
	}
	m.Registry.MustRegister(m.httpInFlight, m.httpRequests, m.httpDuration, m.sales, m.soldUnits)
	return m
}

// Handler 暴露 /metrics。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncInFlight() { m.httpInFlight.Inc() }
func (m *Metrics) DecInFlight() { m.httpInFlight.Dec() }

// ObserveHTTP 记录一次请求；path 应为路由模板，避免 id 撑爆标签基数。
func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveSale 记录一次收银结果：ok / insufficient_stock / not_found / error。
func (m *Metrics) ObserveSale(result string, units int64) {
	m.sales.WithLabelValues(result).Inc()
	if result == "ok" && units > 0 {
		m.soldUnits.Add(float64(units))
	}
}
