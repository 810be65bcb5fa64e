// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package certificate

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/caas-team/canary/pkg/probes"
)

// metrics defines the metric collectors of the certificate probe
type metrics struct {
	daysRemaining *prometheus.GaugeVec
	status        *prometheus.GaugeVec
	count         *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the certificate probe
func newMetrics() metrics {
	return metrics{
		daysRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canary_certificate_days_remaining",
				Help: "Days until the target's certificate expires, negative once expired.",
			},
			[]string{"target"},
		),
		status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canary_certificate_status",
				Help: "Status of the last certificate check (0 healthy, 1 degraded, 2 unhealthy)",
			},
			[]string{"target"},
		),
		count: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canary_certificate_checks_total",
				Help: "Total number of certificate checks performed on the target.",
			},
			[]string{"target"},
		),
	}
}

// update sets the metric collectors to the outcome of a finished check
func (m metrics) update(target string, daysRemaining int, status probes.Status) {
	m.daysRemaining.WithLabelValues(target).Set(float64(daysRemaining))
	m.status.WithLabelValues(target).Set(float64(status))
	m.count.WithLabelValues(target).Inc()
}

// collectors returns all metric collectors
func (m metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.daysRemaining,
		m.status,
		m.count,
	}
}
