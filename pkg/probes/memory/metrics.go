package memory

import (
	"github.com/caas-team/canary/pkg/probes"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics contains the metric collectors of the memory probe
type metrics struct {
	allocatedBytes  prometheus.Gauge
	workingSetBytes prometheus.Gauge
	loadPercent     prometheus.Gauge
	status          prometheus.Gauge
	count           prometheus.Counter
}

// newMetrics initializes metric collectors of the memory probe
func newMetrics() metrics {
	return metrics{
		allocatedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "canary_memory_allocated_bytes",
				Help: "Live heap bytes of the process",
			},
		),
		workingSetBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "canary_memory_working_set_bytes",
				Help: "Resident physical memory of the process",
			},
		),
		loadPercent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "canary_memory_load_percent",
				Help: "Heap footprint as a percentage of total system memory",
			},
		),
		status: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "canary_memory_status",
				Help: "Memory health status (0 healthy, 1 degraded, 2 unhealthy)",
			},
		),
		count: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "canary_memory_checks_total",
				Help: "Count of memory checks done",
			},
		),
	}
}

// update feeds a collected snapshot and its evaluation into the collectors
func (m metrics) update(mt Metrics, status probes.Status) {
	m.allocatedBytes.Set(float64(mt.AllocatedBytes))
	m.workingSetBytes.Set(float64(mt.WorkingSetBytes))
	m.loadPercent.Set(mt.MemoryLoadPercent)
	m.status.Set(float64(status))
	m.count.Inc()
}

// collectors returns all metric collectors of the probe
func (m metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.allocatedBytes,
		m.workingSetBytes,
		m.loadPercent,
		m.status,
		m.count,
	}
}
