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

package probes

import (
	"context"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
)

// Probe implementations evaluate one health dimension of the running
// process and report a tri-state result.
type Probe interface {
	// Name returns the name of the probe.
	Name() string
	// CheckHealth runs the probe once and returns its result.
	//
	// The returned error is reserved for programmer mistakes, such as a nil
	// context or a probe that has already been shut down. Operational
	// failures never surface as errors; they are captured in the result
	// with the severity given by the registration.
	CheckHealth(ctx context.Context, reg Registration) (Result, error)
	// Schema returns an openapi3.SchemaRef of the result type returned by the probe.
	Schema() (*openapi3.SchemaRef, error)
	// GetMetricCollectors allows the probe to provide prometheus metric collectors.
	GetMetricCollectors() []prometheus.Collector
	// Shutdown is called once when the probe is unregistered or the agent shuts down.
	// A probe must not be checked after it has been shut down.
	Shutdown()
}

// Registration carries the host-assigned settings a probe needs at check time.
type Registration struct {
	// Name is the name the probe is registered under.
	Name string
	// FailureStatus is the status reported whenever the probe fails
	// operationally, e.g. a collector error or a network fault. It does not
	// apply to metric-driven degradation.
	FailureStatus Status
}

// DefaultRegistration returns the registration used when the runtime
// configuration does not override the failure status.
func DefaultRegistration(name string) Registration {
	return Registration{
		Name:          name,
		FailureStatus: StatusUnhealthy,
	}
}

// Base is a struct providing common fields and methods used by implementations of the [Probe] interface.
// It serves as a foundational structure that should be embedded in specific probe implementations.
type Base struct {
	// Mutex for thread-safe access to shared resources within the probe implementation.
	Mutex sync.Mutex
	// Done channel is used to notify about shutdown of a probe.
	Done chan struct{}
	// closed is a flag indicating if the probe has been shut down.
	closed bool
}

// NewBase creates a new instance of the [Base] struct.
func NewBase() Base {
	return Base{
		Mutex:  sync.Mutex{},
		Done:   make(chan struct{}, 1),
		closed: false,
	}
}

// Shutdown closes the Done channel to signal that the probe is finished.
func (b *Base) Shutdown() {
	b.Mutex.Lock()
	defer b.Mutex.Unlock()
	if !b.closed {
		close(b.Done)
		b.closed = true
	}
}

// Closed reports whether the probe has been shut down.
func (b *Base) Closed() bool {
	b.Mutex.Lock()
	defer b.Mutex.Unlock()
	return b.closed
}

// Guard performs the programmer-error checks shared by every probe's
// CheckHealth implementation.
func (b *Base) Guard(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if b.Closed() {
		return ErrProbeClosed
	}
	return nil
}

// Runtime is the interface that all probe configurations must implement
type Runtime interface {
	// For returns the name of the probe being configured
	For() string
	// Validate checks if the configuration is valid
	Validate() error
}

// Result encapsulates the outcome of a single probe check.
type Result struct {
	// Status is the evaluated health state
	Status Status `json:"status"`
	// Description is a human readable summary of the check
	Description string `json:"description"`
	// Err carries the captured fault of an operational failure, if any
	Err string `json:"error,omitempty"`
	// Data contains the metrics collected during the check run
	Data map[string]any `json:"data"`
	// Timestamp is the UTC time the check was run
	Timestamp time.Time `json:"timestamp"`
}

// ResultDTO is a data transfer object used to associate a probe's name with its result.
type ResultDTO struct {
	Name   string
	Result *Result
}
