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

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/getkin/kin-openapi/openapi3"
)

var (
	_ probes.Probe   = (*probe)(nil)
	_ probes.Runtime = (*Config)(nil)
)

const ProbeName = "memory"

// probe is the implementation of the memory pressure probe.
// It compares the allocated heap and the working set against their
// configured thresholds and reports the worse of the two dimensions.
type probe struct {
	probes.Base
	config    Config
	collector Collector
	metrics   metrics
}

// New creates a new instance of the memory probe.
// The configuration is validated here; an invalid configuration makes
// the probe unusable and construction fails.
func New(cfg Config) (probes.Probe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &probe{
		Base:      probes.NewBase(),
		config:    cfg,
		collector: NewCollector(),
		metrics:   newMetrics(),
	}, nil
}

// Name returns the name of the probe
func (*probe) Name() string {
	return ProbeName
}

// CheckHealth collects a fresh memory snapshot and evaluates it.
func (p *probe) CheckHealth(ctx context.Context, reg probes.Registration) (probes.Result, error) {
	if err := p.Guard(ctx); err != nil {
		return probes.Result{}, err
	}
	log := logger.FromContext(ctx).With("probe", ProbeName)

	select {
	case <-ctx.Done():
		log.Warn("Check cancelled before collection", "error", ctx.Err())
		return p.failure(reg, "cancelled", ctx.Err()), nil
	default:
	}

	m, err := p.collector.Collect(ctx)
	if err != nil {
		log.Error("Memory health check failed", "error", err)
		p.metrics.status.Set(float64(reg.FailureStatus))
		return p.failure(reg, "Memory health check failed", err), nil
	}

	cfg := p.config
	status := probes.Worst(
		probes.Evaluate(m.AllocatedBytes,
			probes.MegabytesToBytes(cfg.WarningThresholdMB),
			probes.MegabytesToBytes(cfg.CriticalThresholdMB)),
		probes.Evaluate(m.WorkingSetBytes,
			probes.MegabytesToBytes(cfg.WorkingSetWarningMB),
			probes.MegabytesToBytes(cfg.WorkingSetCriticalMB)),
	)

	switch status {
	case probes.StatusDegraded:
		log.Warn("Memory usage is approaching critical levels",
			"allocated_bytes", m.AllocatedBytes,
			"working_set_bytes", m.WorkingSetBytes,
			"warningThresholdMB", cfg.WarningThresholdMB,
			"workingSetWarningMB", cfg.WorkingSetWarningMB)
	case probes.StatusUnhealthy:
		log.Error("Memory usage exceeds critical threshold",
			"allocated_bytes", m.AllocatedBytes,
			"working_set_bytes", m.WorkingSetBytes,
			"criticalThresholdMB", cfg.CriticalThresholdMB,
			"workingSetCriticalMB", cfg.WorkingSetCriticalMB)
	}

	p.metrics.update(m, status)

	return probes.Result{
		Status: status,
		Description: fmt.Sprintf("%s Allocated: %dMB, Working Set: %dMB",
			phrase(status),
			probes.BytesToMegabytes(m.AllocatedBytes),
			probes.BytesToMegabytes(m.WorkingSetBytes)),
		Data:      m.Data(),
		Timestamp: time.Now().UTC(),
	}, nil
}

// Schema provides the schema of the data that will be provided
// by the memory probe
func (p *probe) Schema() (*openapi3.SchemaRef, error) {
	return probes.OpenapiFromData(Metrics{})
}

// GetMetricCollectors returns all metric collectors of the probe
func (p *probe) GetMetricCollectors() []prometheus.Collector {
	return p.metrics.collectors()
}

// failure builds the result for an operational failure with the
// severity the host assigned at registration.
func (p *probe) failure(reg probes.Registration, desc string, err error) probes.Result {
	return probes.Result{
		Status:      reg.FailureStatus,
		Description: desc,
		Err:         err.Error(),
		Data:        map[string]any{},
		Timestamp:   time.Now().UTC(),
	}
}

// phrase returns the description prefix matching the evaluated status.
func phrase(s probes.Status) string {
	switch s {
	case probes.StatusUnhealthy:
		return "Memory usage exceeds critical threshold!"
	case probes.StatusDegraded:
		return "Memory usage is approaching critical levels!"
	default:
		return "Memory usage is within normal range."
	}
}
