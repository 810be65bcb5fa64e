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

package canary

import (
	"context"
	"reflect"
	"sync"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/canary/metrics"
	"github.com/caas-team/canary/pkg/db"
	"github.com/caas-team/canary/pkg/factory"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/caas-team/canary/pkg/probes/runtime"
)

// ProbesController is responsible for managing probes.
type ProbesController struct {
	db      db.DB
	metrics metrics.Collector
	deps    factory.Deps

	mu     sync.RWMutex
	probes map[string]*probeEntry
}

// probeEntry is a registered probe together with the registration it is
// checked with and the raw settings it was built from. The raw settings
// are what reconciliation diffs a delivery against.
type probeEntry struct {
	probe probes.Probe
	reg   probes.Registration
	cfg   any
}

// NewProbesController creates a new ProbesController.
func NewProbesController(dbase db.DB, collector metrics.Collector, deps factory.Deps) *ProbesController {
	return &ProbesController{
		db:      dbase,
		metrics: collector,
		deps:    deps,
		probes:  map[string]*probeEntry{},
	}
}

// Reconcile applies a runtime configuration delivery to the running
// probe set. The whole delivery is decoded and validated up front; a
// delivery with any bad entry is rejected and the running set stays
// untouched. Unchanged probes keep their instance, changed ones are
// replaced and probes that are no longer configured are shut down.
func (pc *ProbesController) Reconcile(ctx context.Context, cfg runtime.Config) {
	log := logger.FromContext(ctx)

	desired, err := factory.NewProbesFromConfig(cfg, pc.deps)
	if err != nil {
		log.ErrorContext(ctx, "Rejecting runtime configuration", "error", err)
		return
	}
	regs := make(map[string]probes.Registration, len(desired))
	for name := range desired {
		raw, _ := cfg.For(name)
		reg, rErr := factory.RegistrationFor(name, raw)
		if rErr != nil {
			log.ErrorContext(ctx, "Rejecting runtime configuration", "error", rErr)
			return
		}
		regs[name] = reg
	}

	for name, entry := range pc.entries() {
		if _, ok := desired[name]; !ok {
			log.InfoContext(ctx, "Probe is no longer configured, unregistering", "probe", name)
			pc.UnregisterProbe(ctx, entry.probe)
		}
	}

	for _, name := range cfg.Names() {
		raw, _ := cfg.For(name)
		current, ok := pc.lookup(name)
		switch {
		case !ok:
			log.InfoContext(ctx, "Registering new probe", "probe", name)
		case reflect.DeepEqual(current.cfg, raw):
			continue
		default:
			log.InfoContext(ctx, "Probe configuration changed, replacing", "probe", name)
			pc.UnregisterProbe(ctx, current.probe)
		}
		pc.RegisterProbe(ctx, desired[name], regs[name], raw)
	}
}

// RegisterProbe registers a new probe.
func (pc *ProbesController) RegisterProbe(ctx context.Context, p probes.Probe, reg probes.Registration, cfg any) {
	log := logger.FromContext(ctx).With("probe", p.Name())

	// Add prometheus collectors of probe to registry
	for _, collector := range p.GetMetricCollectors() {
		if err := pc.metrics.GetRegistry().Register(collector); err != nil {
			log.ErrorContext(ctx, "Could not add metrics collector to registry", "error", err)
		}
	}

	pc.mu.Lock()
	pc.probes[p.Name()] = &probeEntry{probe: p, reg: reg, cfg: cfg}
	pc.mu.Unlock()
}

// UnregisterProbe shuts a probe down and removes it together with its
// metric collectors.
func (pc *ProbesController) UnregisterProbe(ctx context.Context, p probes.Probe) {
	log := logger.FromContext(ctx).With("probe", p.Name())

	// Remove prometheus collectors of probe from registry
	for _, collector := range p.GetMetricCollectors() {
		if !pc.metrics.GetRegistry().Unregister(collector) {
			log.ErrorContext(ctx, "Could not remove metrics collector from registry")
		}
	}

	p.Shutdown()

	pc.mu.Lock()
	delete(pc.probes, p.Name())
	pc.mu.Unlock()
}

// RunProbe executes a single check of the named probe and saves its
// result. A name that was unregistered in the meantime is skipped.
// Errors from CheckHealth are programmer faults; they are logged and
// the stored result stays untouched.
func (pc *ProbesController) RunProbe(ctx context.Context, name string) {
	log := logger.FromContext(ctx).With("probe", name)

	entry, ok := pc.lookup(name)
	if !ok {
		log.DebugContext(ctx, "Probe was unregistered before its check ran")
		return
	}

	result, err := entry.probe.CheckHealth(ctx, entry.reg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to run probe", "error", err)
		return
	}
	pc.db.Save(probes.ResultDTO{Name: name, Result: &result})
}

// Shutdown unregisters all probes.
func (pc *ProbesController) Shutdown(ctx context.Context) {
	for _, entry := range pc.entries() {
		pc.UnregisterProbe(ctx, entry.probe)
	}
}

// Probes returns the currently registered probes keyed by name.
func (pc *ProbesController) Probes() map[string]probes.Probe {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	out := make(map[string]probes.Probe, len(pc.probes))
	for name, entry := range pc.probes {
		out[name] = entry.probe
	}
	return out
}

// entries returns a snapshot of the registered probe entries. The
// entries themselves are immutable; a replacement installs a new entry.
func (pc *ProbesController) entries() map[string]*probeEntry {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	out := make(map[string]*probeEntry, len(pc.probes))
	for name, entry := range pc.probes {
		out[name] = entry
	}
	return out
}

func (pc *ProbesController) lookup(name string) (*probeEntry, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	entry, ok := pc.probes[name]
	return entry, ok
}
