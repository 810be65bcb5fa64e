package workerpool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/caas-team/canary/pkg/probes"
)

// metrics defines the metric collectors of the workerpool probe
type metrics struct {
	threads *prometheus.GaugeVec
	status  prometheus.Gauge
	count   prometheus.Counter
}

// newMetrics initializes metric collectors of the workerpool probe
func newMetrics() metrics {
	return metrics{
		threads: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canary_pool_threads",
				Help: "Pool counters by kind and state",
			},
			[]string{
				"kind",
				"state",
			},
		),
		status: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "canary_pool_status",
				Help: "Status of the last worker pool check (0 healthy, 1 degraded, 2 unhealthy)",
			},
		),
		count: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "canary_pool_checks_total",
				Help: "Total number of worker pool checks",
			},
		),
	}
}

// update sets the metric collectors to the counters of a finished check
func (m metrics) update(c Counters, status probes.Status) {
	m.threads.WithLabelValues(kindWorker, "min").Set(float64(c.MinWorkerThreads))
	m.threads.WithLabelValues(kindWorker, "max").Set(float64(c.MaxWorkerThreads))
	m.threads.WithLabelValues(kindWorker, "available").Set(float64(c.AvailableWorkerThreads))
	m.threads.WithLabelValues(kindWorker, "active").Set(float64(c.ActiveWorkerThreads))
	m.threads.WithLabelValues(kindIO, "min").Set(float64(c.MinIOThreads))
	m.threads.WithLabelValues(kindIO, "max").Set(float64(c.MaxIOThreads))
	m.threads.WithLabelValues(kindIO, "available").Set(float64(c.AvailableIOThreads))
	m.threads.WithLabelValues(kindIO, "active").Set(float64(c.ActiveIOThreads))
	m.status.Set(float64(status))
	m.count.Inc()
}

// collectors returns all metric collectors
func (m metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.threads, m.status, m.count}
}
