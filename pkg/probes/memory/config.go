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
	"github.com/caas-team/canary/pkg/probes"
)

// Config defines the thresholds of the memory probe. All values are
// megabytes; they are converted to bytes exactly when compared against
// the collected counters.
type Config struct {
	// WarningThresholdMB is the allocated heap size above which the probe degrades.
	WarningThresholdMB uint64 `json:"warningThresholdMB" yaml:"warningThresholdMB" mapstructure:"warningThresholdMB"`
	// CriticalThresholdMB is the allocated heap size above which the probe is unhealthy.
	CriticalThresholdMB uint64 `json:"criticalThresholdMB" yaml:"criticalThresholdMB" mapstructure:"criticalThresholdMB"`
	// WorkingSetWarningMB is the resident memory above which the probe degrades.
	WorkingSetWarningMB uint64 `json:"workingSetWarningMB" yaml:"workingSetWarningMB" mapstructure:"workingSetWarningMB"`
	// WorkingSetCriticalMB is the resident memory above which the probe is unhealthy.
	WorkingSetCriticalMB uint64 `json:"workingSetCriticalMB" yaml:"workingSetCriticalMB" mapstructure:"workingSetCriticalMB"`
}

// For returns the name of the probe
func (c *Config) For() string {
	return ProbeName
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.WarningThresholdMB == 0 {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "warningThresholdMB", Reason: "must be greater than zero"}
	}
	if c.CriticalThresholdMB <= c.WarningThresholdMB {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "criticalThresholdMB", Reason: "must be greater than warningThresholdMB"}
	}
	if c.WorkingSetWarningMB == 0 {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "workingSetWarningMB", Reason: "must be greater than zero"}
	}
	if c.WorkingSetCriticalMB <= c.WorkingSetWarningMB {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "workingSetCriticalMB", Reason: "must be greater than workingSetWarningMB"}
	}
	return nil
}
