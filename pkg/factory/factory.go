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

package factory

import (
	"fmt"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/caas-team/canary/pkg/probes/certificate"
	"github.com/caas-team/canary/pkg/probes/memory"
	"github.com/caas-team/canary/pkg/probes/runtime"
	"github.com/caas-team/canary/pkg/probes/workerpool"
)

// Deps are the agent-owned resources probes observe.
type Deps struct {
	// PoolStats feeds the workerpool probe. Building that probe
	// without it fails.
	PoolStats workerpool.StatsSource
}

// Options are the host-side registration settings every probe entry
// may carry alongside the probe's own configuration.
type Options struct {
	// FailureStatus is the severity reported on operational failures.
	// Unset means unhealthy.
	FailureStatus *probes.Status `mapstructure:"failureStatus"`
}

// Registration renders the options into the registration handed to the
// probe on every check.
func (o Options) Registration(name string) probes.Registration {
	reg := probes.DefaultRegistration(name)
	if o.FailureStatus != nil {
		reg.FailureStatus = *o.FailureStatus
	}
	return reg
}

// RegistrationFor decodes the registration options carried in a
// probe's raw settings.
func RegistrationFor(name string, raw any) (probes.Registration, error) {
	opts, err := helper.Decode[Options](raw)
	if err != nil {
		return probes.Registration{}, fmt.Errorf("decoding registration options for probe %q: %w", name, err)
	}
	return opts.Registration(name), nil
}

// newProbe creates a configured probe instance from its raw settings
func newProbe(name string, raw any, deps Deps) (probes.Probe, error) {
	if b, ok := registry[name]; ok {
		return b(raw, deps)
	}
	return nil, fmt.Errorf("unknown probe type %q", name)
}

// NewProbesFromConfig creates all probes the runtime configuration
// defines. Decoding or validation failures of any entry fail the whole
// set so a bad reload never half-applies.
func NewProbesFromConfig(cfg runtime.Config, deps Deps) (map[string]probes.Probe, error) {
	result := make(map[string]probes.Probe)
	for _, name := range cfg.Names() {
		raw, _ := cfg.For(name)
		p, err := newProbe(name, raw, deps)
		if err != nil {
			return nil, fmt.Errorf("creating probe %q: %w", name, err)
		}
		result[p.Name()] = p
	}
	return result, nil
}

type builder func(raw any, deps Deps) (probes.Probe, error)

// registry is a convenience map to create new probes
var registry = map[string]builder{
	memory.ProbeName:      newMemory,
	workerpool.ProbeName:  newWorkerPool,
	certificate.ProbeName: newCertificate,
}

func newMemory(raw any, _ Deps) (probes.Probe, error) {
	cfg, err := helper.Decode[memory.Config](raw)
	if err != nil {
		return nil, err
	}
	return memory.New(cfg)
}

func newWorkerPool(_ any, deps Deps) (probes.Probe, error) {
	return workerpool.New(deps.PoolStats)
}

func newCertificate(raw any, _ Deps) (probes.Probe, error) {
	cfg, err := helper.Decode[certificate.Config](raw)
	if err != nil {
		return nil, err
	}
	return certificate.New(cfg)
}
