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

package workerpool

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/pool"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/getkin/kin-openapi/openapi3"
)

var (
	_ probes.Probe   = (*probe)(nil)
	_ probes.Runtime = (*Config)(nil)
)

const ProbeName = "workerpool"

const (
	kindWorker = "worker"
	kindIO     = "io"
)

// StatsSource provides live counters for the two agent-owned pools.
// The probe only reads through it; a resize between checks is
// reflected by the next call, nothing is cached.
type StatsSource interface {
	WorkerStats() pool.Stats
	IOStats() pool.Stats
}

// probe is the implementation of the worker pool starvation probe.
// A pool kind starves the moment its active count exceeds the
// configured minimum, which flags pressure well before exhaustion.
type probe struct {
	probes.Base
	source  StatsSource
	metrics metrics
}

// New creates a new instance of the workerpool probe observing the
// pools behind the given stats source.
func New(source StatsSource) (probes.Probe, error) {
	if source == nil {
		return nil, probes.ErrInvalidConfig{ProbeName: ProbeName, Field: "source", Reason: "stats source must not be nil"}
	}
	return &probe{
		Base:    probes.NewBase(),
		source:  source,
		metrics: newMetrics(),
	}, nil
}

// Name returns the name of the probe
func (*probe) Name() string {
	return ProbeName
}

// CheckHealth reads both pools' counters and evaluates starvation.
func (p *probe) CheckHealth(ctx context.Context, reg probes.Registration) (probes.Result, error) {
	if err := p.Guard(ctx); err != nil {
		return probes.Result{}, err
	}
	log := logger.FromContext(ctx).With("probe", ProbeName)

	c, err := p.collect()
	if err != nil {
		log.Error("Worker pool health check failed", "error", err)
		p.metrics.status.Set(float64(reg.FailureStatus))
		return p.failure(reg, "Worker pool health check failed", err), nil
	}

	status := probes.StatusHealthy
	if excess := c.ActiveWorkerThreads - c.MinWorkerThreads; excess > 0 {
		log.Error("Worker pool starvation detected", "kind", kindWorker,
			"active", c.ActiveWorkerThreads, "min", c.MinWorkerThreads, "excess", excess)
		status = probes.StatusUnhealthy
	}
	if excess := c.ActiveIOThreads - c.MinIOThreads; excess > 0 {
		log.Error("Worker pool starvation detected", "kind", kindIO,
			"active", c.ActiveIOThreads, "min", c.MinIOThreads, "excess", excess)
		status = probes.StatusUnhealthy
	}

	p.metrics.update(c, status)

	desc := "Worker pools are healthy: " + c.summary()
	if status == probes.StatusUnhealthy {
		desc = "Worker pool starvation detected: " + c.summary()
	}

	return probes.Result{
		Status:      status,
		Description: desc,
		Data:        c.Data(),
		Timestamp:   time.Now().UTC(),
	}, nil
}

// collect reads both pool kinds through the stats source.
// A misbehaving source may panic; that is converted into the
// operational failure branch instead of escaping the probe.
func (p *probe) collect() (c Counters, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pool counters: %v", r)
		}
	}()
	return newCounters(p.source.WorkerStats(), p.source.IOStats()), nil
}

// Schema provides the schema of the data that will be provided
// by the workerpool probe
func (p *probe) Schema() (*openapi3.SchemaRef, error) {
	return probes.OpenapiFromData(Counters{})
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

// Counters is the snapshot of both pool kinds taken during a check.
type Counters struct {
	MinWorkerThreads       int `json:"min_worker_threads"`
	MaxWorkerThreads       int `json:"max_worker_threads"`
	AvailableWorkerThreads int `json:"available_worker_threads"`
	ActiveWorkerThreads    int `json:"active_worker_threads"`
	MinIOThreads           int `json:"min_io_threads"`
	MaxIOThreads           int `json:"max_io_threads"`
	AvailableIOThreads     int `json:"available_io_threads"`
	ActiveIOThreads        int `json:"active_io_threads"`
}

func newCounters(worker, io pool.Stats) Counters {
	return Counters{
		MinWorkerThreads:       worker.Min,
		MaxWorkerThreads:       worker.Max,
		AvailableWorkerThreads: worker.Available,
		ActiveWorkerThreads:    worker.Active,
		MinIOThreads:           io.Min,
		MaxIOThreads:           io.Max,
		AvailableIOThreads:     io.Available,
		ActiveIOThreads:        io.Active,
	}
}

// Data returns the counters keyed by their public metric names.
func (c Counters) Data() map[string]any {
	return map[string]any{
		"min_worker_threads":       c.MinWorkerThreads,
		"max_worker_threads":       c.MaxWorkerThreads,
		"available_worker_threads": c.AvailableWorkerThreads,
		"active_worker_threads":    c.ActiveWorkerThreads,
		"min_io_threads":           c.MinIOThreads,
		"max_io_threads":           c.MaxIOThreads,
		"available_io_threads":     c.AvailableIOThreads,
		"active_io_threads":        c.ActiveIOThreads,
	}
}

// summary renders all eight counters for the result description.
func (c Counters) summary() string {
	return fmt.Sprintf("Worker: %d min, %d max, %d available, %d active. IO: %d min, %d max, %d available, %d active.",
		c.MinWorkerThreads, c.MaxWorkerThreads, c.AvailableWorkerThreads, c.ActiveWorkerThreads,
		c.MinIOThreads, c.MaxIOThreads, c.AvailableIOThreads, c.ActiveIOThreads)
}
