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

package runtime

import "sort"

// Config holds the runtime configuration for the probes canary
// supports. Each entry keeps the still untyped settings of one probe
// keyed by its name; the factory decodes and validates them when the
// probe is built.
type Config struct {
	Probes map[string]any `yaml:"probes" json:"probes"`
}

// Empty returns true if no probes are configured
func (c Config) Empty() bool {
	return len(c.Probes) == 0
}

// HasProbe returns true if a probe with the given name is configured
func (c Config) HasProbe(name string) bool {
	_, ok := c.Probes[name]
	return ok
}

// For returns the raw configuration for the probe with the given name
func (c Config) For(name string) (any, bool) {
	raw, ok := c.Probes[name]
	return raw, ok
}

// Names returns the configured probe names in deterministic order
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Probes))
	for name := range c.Probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
